// Package ctdl models the subset of the Credential Transparency Description
// Language that the publisher reads from and writes to the registry.
//
// Relationship properties and typed sub-lists are closed enumerations stored
// in maps keyed by those enumerations. The JSON codec flattens them back into
// the named fields the registry expects and keeps any field it does not know
// about, so records fetched from the registry survive a round trip.
package ctdl

import (
	"encoding/json"
	"maps"
	"slices"
)

// OrgRef references an organization by CTID.
type OrgRef struct {
	CTID string `json:"CTID"`
}

// IdentifierValue is a coded identifier attached to a target.
type IdentifierValue struct {
	IdentifierType      string `json:"IdentifierType,omitempty"`
	IdentifierTypeName  string `json:"IdentifierTypeName,omitempty"`
	IdentifierValueCode string `json:"IdentifierValueCode,omitempty"`
}

// Target is one entry of a typed sub-list. Competencies use the TargetNode
// fields, every other entity uses Type/Name/Description/SubjectWebpage.
type Target struct {
	Type                  string            `json:"Type,omitempty"`
	Name                  string            `json:"Name,omitempty"`
	Description           string            `json:"Description,omitempty"`
	SubjectWebpage        string            `json:"SubjectWebpage,omitempty"`
	TargetNode            string            `json:"TargetNode,omitempty"`
	TargetNodeName        string            `json:"TargetNodeName,omitempty"`
	TargetNodeDescription string            `json:"TargetNodeDescription,omitempty"`
	FrameworkName         string            `json:"FrameworkName,omitempty"`
	CodedNotation         string            `json:"CodedNotation,omitempty"`
	Identifier            []IdentifierValue `json:"Identifier,omitempty"`

	// Extra holds fields the codec does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// URL returns the address that identifies the target.
func (t Target) URL() string {
	if t.TargetNode != "" {
		return t.TargetNode
	}
	return t.SubjectWebpage
}

// Clone returns a deep copy of t.
func (t Target) Clone() Target {
	t.Identifier = slices.Clone(t.Identifier)
	t.Extra = cloneRaw(t.Extra)
	return t
}

// ConditionProfile groups typed targets under a relationship property.
type ConditionProfile struct {
	Type           string `json:"Type,omitempty"`
	Name           string `json:"Name,omitempty"`
	Description    string `json:"Description"`
	SubjectWebpage string `json:"SubjectWebpage,omitempty"`

	// Targets never holds an empty slice; emptied sub-lists are deleted.
	Targets map[TargetProperty][]Target `json:"-"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Entries returns the targets in sub-list tp.
func (p ConditionProfile) Entries(tp TargetProperty) []Target {
	return p.Targets[tp]
}

// EntryCount counts targets across every typed sub-list.
func (p ConditionProfile) EntryCount() int {
	n := 0
	for _, entries := range p.Targets {
		n += len(entries)
	}
	return n
}

// SetEntries replaces sub-list tp, deleting it when entries is empty.
func (p *ConditionProfile) SetEntries(tp TargetProperty, entries []Target) {
	if len(entries) == 0 {
		delete(p.Targets, tp)
		if len(p.Targets) == 0 {
			p.Targets = nil
		}
		return
	}
	if p.Targets == nil {
		p.Targets = make(map[TargetProperty][]Target)
	}
	p.Targets[tp] = entries
}

// Clone returns a deep copy of p.
func (p ConditionProfile) Clone() ConditionProfile {
	if p.Targets != nil {
		targets := make(map[TargetProperty][]Target, len(p.Targets))
		for tp, entries := range p.Targets {
			targets[tp] = cloneTargets(entries)
		}
		p.Targets = targets
	}
	p.Extra = cloneRaw(p.Extra)
	return p
}

// Credential is the credential body exchanged with the registry.
type Credential struct {
	CredentialID            string            `json:"CredentialId"`
	CredentialType          string            `json:"CredentialType,omitempty"`
	CredentialStatusType    string            `json:"CredentialStatusType,omitempty"`
	Name                    string            `json:"Name"`
	Description             string            `json:"Description"`
	CTID                    string            `json:"CTID,omitempty"`
	OwnedBy                 []OrgRef          `json:"OwnedBy,omitempty"`
	OfferedBy               []OrgRef          `json:"OfferedBy,omitempty"`
	SubjectWebpage          string            `json:"SubjectWebpage,omitempty"`
	DateEffective           string            `json:"DateEffective,omitempty"`
	InLanguage              []string          `json:"InLanguage,omitempty"`
	Image                   string            `json:"Image,omitempty"`
	Keyword                 []string          `json:"Keyword,omitempty"`
	UsesVerificationService []string          `json:"UsesVerificationService,omitempty"`
	Identifier              []IdentifierValue `json:"Identifier,omitempty"`

	// Relations never holds an empty slice; emptied properties are deleted.
	Relations map[RelationshipProperty][]ConditionProfile `json:"-"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Profiles returns the condition profiles under p. The slice is shared with
// the credential and must not be modified.
func (c Credential) Profiles(p RelationshipProperty) []ConditionProfile {
	return c.Relations[p]
}

// HasProfiles reports whether p holds at least one profile.
func (c Credential) HasProfiles(p RelationshipProperty) bool {
	return len(c.Relations[p]) > 0
}

// SetProfiles replaces property p, deleting it when profiles is empty.
func (c *Credential) SetProfiles(p RelationshipProperty, profiles []ConditionProfile) {
	if len(profiles) == 0 {
		delete(c.Relations, p)
		if len(c.Relations) == 0 {
			c.Relations = nil
		}
		return
	}
	if c.Relations == nil {
		c.Relations = make(map[RelationshipProperty][]ConditionProfile)
	}
	c.Relations[p] = profiles
}

// Clone returns a deep copy of c.
func (c Credential) Clone() Credential {
	c.OwnedBy = slices.Clone(c.OwnedBy)
	c.OfferedBy = slices.Clone(c.OfferedBy)
	c.InLanguage = slices.Clone(c.InLanguage)
	c.Keyword = slices.Clone(c.Keyword)
	c.UsesVerificationService = slices.Clone(c.UsesVerificationService)
	c.Identifier = slices.Clone(c.Identifier)
	if c.Relations != nil {
		relations := make(map[RelationshipProperty][]ConditionProfile, len(c.Relations))
		for p, profiles := range c.Relations {
			relations[p] = cloneProfiles(profiles)
		}
		c.Relations = relations
	}
	c.Extra = cloneRaw(c.Extra)
	return c
}

// APICredential is the body of a save request.
type APICredential struct {
	PublishForOrganizationIdentifier string     `json:"PublishForOrganizationIdentifier"`
	Credential                       Credential `json:"Credential"`
}

func cloneProfiles(profiles []ConditionProfile) []ConditionProfile {
	if profiles == nil {
		return nil
	}
	out := make([]ConditionProfile, len(profiles))
	for i, p := range profiles {
		out[i] = p.Clone()
	}
	return out
}

func cloneTargets(targets []Target) []Target {
	if targets == nil {
		return nil
	}
	out := make([]Target, len(targets))
	for i, t := range targets {
		out[i] = t.Clone()
	}
	return out
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}
