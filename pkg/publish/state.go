package publish

import (
	"slices"

	"github.com/agentstation/utc"

	"github.com/credentialengine/obpublisher/pkg/ctdl"
)

// State is the publication status of one credential.
type State string

// Publication states. The values are the labels shown to operators.
const (
	StatePending        State = "Pending"
	StatePendingNew     State = "Pending New"
	StatePendingUpdate  State = "Pending Update"
	StateSaveInProgress State = "Save in Progress"
	StateSaveError      State = "Error"
	StateSaveSuccess    State = "Success"
)

// String implements fmt.Stringer.
func (s State) String() string { return string(s) }

var transitions = map[State][]State{
	StatePending:        {StatePendingNew, StatePendingUpdate},
	StatePendingNew:     {StateSaveInProgress},
	StatePendingUpdate:  {StateSaveInProgress, StateSaveError},
	StateSaveInProgress: {StateSaveSuccess, StateSaveError},
	StateSaveError:      {StateSaveInProgress},
}

// CanTransition reports whether a credential may move from one state to
// another. A failed detail fetch moves PendingUpdate straight to SaveError;
// a failed save may be retried.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// Saveable reports whether a save may start from s.
func (s State) Saveable() bool {
	return CanTransition(s, StateSaveInProgress)
}

// Queued reports whether s is waiting for its first save attempt.
func (s State) Queued() bool {
	return s == StatePendingNew || s == StatePendingUpdate
}

// Status is the publication record for one credential.
type Status struct {
	CredentialID string           `json:"credentialId" yaml:"credential_id"`
	CTID         string           `json:"ctid,omitempty" yaml:"ctid,omitempty"`
	RemoteID     int64            `json:"remoteId,omitempty" yaml:"remote_id,omitempty"`
	Type         string           `json:"type,omitempty" yaml:"type,omitempty"`
	State        State            `json:"publicationStatus" yaml:"publication_status"`
	Messages     []string         `json:"messages,omitempty" yaml:"messages,omitempty"`
	RemoteData   *ctdl.Credential `json:"publisherData,omitempty" yaml:"-"`
	UpdatedAt    utc.Time         `json:"updatedAt" yaml:"updated_at"`
}

// Clone returns a deep copy of s.
func (s Status) Clone() Status {
	s.Messages = slices.Clone(s.Messages)
	if s.RemoteData != nil {
		remote := s.RemoteData.Clone()
		s.RemoteData = &remote
	}
	return s
}
