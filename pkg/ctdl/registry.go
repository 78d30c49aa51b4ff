package ctdl

// CredentialSummary is one row of a publisher search: enough to match a
// registry record to a local draft and fetch its detail.
type CredentialSummary struct {
	ID           int64  `json:"Id,omitempty"`
	RowID        string `json:"RowId,omitempty"`
	Name         string `json:"Name,omitempty"`
	Description  string `json:"Description,omitempty"`
	CTID         string `json:"CTID,omitempty"`
	Type         string `json:"Type,omitempty"`
	CredentialID string `json:"CredentialId,omitempty"`
}

// SaveResult is the registry's answer to a save request.
type SaveResult struct {
	Accepted bool
	CTID     string
	RowID    string
	Messages []string
}
