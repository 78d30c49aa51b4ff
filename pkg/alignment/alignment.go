// Package alignment turns badge alignments into CTDL relationship
// structures and back.
//
// Every function in this package is a pure transformation: arguments are
// never modified and results share no mutable state with them. That makes
// MergeAllAlignments a plain fold and lets callers keep earlier values as
// snapshots.
package alignment

import (
	"maps"

	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/errors"
)

// Alignment is an external reference attached to a badge. TargetURL is its
// identity.
type Alignment struct {
	TargetURL         string `json:"targetUrl" yaml:"targetUrl"`
	TargetName        string `json:"targetName" yaml:"targetName"`
	TargetDescription string `json:"targetDescription" yaml:"targetDescription,omitempty"`
	TargetFramework   string `json:"targetFramework,omitempty" yaml:"targetFramework,omitempty"`
	TargetCode        string `json:"targetCode,omitempty" yaml:"targetCode,omitempty"`
}

// Validate checks that the alignment can be keyed.
func (a Alignment) Validate() error {
	if a.TargetURL == "" {
		return errors.NewValidationError("targetUrl", a.TargetURL, "alignment target URL is required")
	}
	return nil
}

// Config is an alignment together with the placement chosen for it.
type Config struct {
	SourceData      Alignment                 `json:"sourceData"`
	PropertyType    ctdl.RelationshipProperty `json:"propertyType"`
	TargetNodeType  ctdl.TargetNodeType       `json:"targetNodeType"`
	DestinationData map[string]string         `json:"destinationData"`
	Skip            bool                      `json:"skip"`
}

// URL returns the target URL the config is keyed by.
func (c Config) URL() string {
	return c.SourceData.TargetURL
}

// Clone returns a copy that shares no maps with c.
func (c Config) Clone() Config {
	c.DestinationData = maps.Clone(c.DestinationData)
	if c.DestinationData == nil {
		c.DestinationData = map[string]string{}
	}
	return c
}

// Defaults is the placement given to freshly imported alignments.
type Defaults struct {
	PropertyType ctdl.RelationshipProperty `mapstructure:"property_type" json:"propertyType" yaml:"property_type"`
	NodeType     ctdl.TargetNodeType       `mapstructure:"target_node_type" json:"targetNodeType" yaml:"target_node_type"`
}

// StandardDefaults files every alignment as a required competency.
func StandardDefaults() Defaults {
	return Defaults{PropertyType: ctdl.Requires, NodeType: ctdl.NodeCompetency}
}

// Normalize wraps a into a Config using the placement in d. Empty fields
// of d fall back to StandardDefaults. Self-referential alignments are kept;
// FilterAlignmentFromCredential drops them later.
func Normalize(a Alignment, d Defaults) Config {
	std := StandardDefaults()
	if d.PropertyType == "" {
		d.PropertyType = std.PropertyType
	}
	if d.NodeType == "" {
		d.NodeType = std.NodeType
	}
	return Config{
		SourceData:      a,
		PropertyType:    d.PropertyType,
		TargetNodeType:  d.NodeType,
		DestinationData: map[string]string{},
		Skip:            false,
	}
}

// Draft is the local, editable form of a credential and its alignments.
type Draft struct {
	PublishForOrganizationIdentifier string          `json:"PublishForOrganizationIdentifier"`
	Credential                       ctdl.Credential `json:"Credential"`
	Alignments                       Map             `json:"obAlignments"`
}

// ID returns the credential identifier the draft is keyed by.
func (d Draft) ID() string {
	return d.Credential.CredentialID
}

// Clone returns a deep copy of d.
func (d Draft) Clone() Draft {
	d.Credential = d.Credential.Clone()
	d.Alignments = d.Alignments.Clone()
	return d
}

// Finalize folds the alignments into the credential and returns the save
// request body.
func (d Draft) Finalize() ctdl.APICredential {
	return ctdl.APICredential{
		PublishForOrganizationIdentifier: d.PublishForOrganizationIdentifier,
		Credential:                       MergeAllAlignments(d.Credential, d.Alignments),
	}
}
