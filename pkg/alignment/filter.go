package alignment

import (
	"slices"

	"github.com/credentialengine/obpublisher/pkg/ctdl"
)

// FilterAlignmentFromConditionProfile removes every target whose URL equals
// the config's target URL from each typed sub-list of p. A config without a
// URL removes nothing but still applies the pruning below.
//
// When a target was found the returned config records where it was filed:
// prop and the node type implied by its sub-list. The returned profile is
// nil when it should be dropped: it holds no targets, is not the criteria
// profile, and either lost its last target here or has no curated name.
func FilterAlignmentFromConditionProfile(p ctdl.ConditionProfile, c Config, prop ctdl.RelationshipProperty) (*ctdl.ConditionProfile, *Config) {
	url := c.URL()
	out := p.Clone()

	var found *Config
	for _, tp := range ctdl.TargetProperties() {
		if url == "" {
			break
		}
		entries := out.Entries(tp)
		idx := slices.IndexFunc(entries, func(t ctdl.Target) bool { return t.URL() == url })
		if idx < 0 {
			continue
		}
		if found == nil {
			found = rediscover(c, prop, tp, entries[idx])
		}
		out.SetEntries(tp, slices.DeleteFunc(entries, func(t ctdl.Target) bool { return t.URL() == url }))
	}

	if out.EntryCount() == 0 && !ctdl.IsCriteriaProfile(out) {
		curated := out.Name != "" && !ctdl.IsOwnedProfileName(out.Name)
		if found != nil || !curated {
			return nil, found
		}
	}
	return &out, found
}

// FilterAlignmentFromCredential strips the config's target from every
// condition property and QA property of the draft's credential.
//
// A placement found in the credential replaces the draft's config for that
// URL. A config pointing at selfURL, the credential's own registry page, is
// removed from the draft's alignments instead.
func FilterAlignmentFromCredential(d Draft, c Config, selfURL string) Draft {
	out := d.Clone()
	url := c.URL()

	var found *Config
	for _, prop := range ctdl.ConditionProperties() {
		profiles := out.Credential.Profiles(prop)
		if len(profiles) == 0 {
			continue
		}
		kept := make([]ctdl.ConditionProfile, 0, len(profiles))
		for _, p := range profiles {
			filtered, rediscovered := FilterAlignmentFromConditionProfile(p, c, prop)
			if found == nil {
				found = rediscovered
			}
			if filtered != nil {
				kept = append(kept, *filtered)
			}
		}
		out.Credential.SetProfiles(prop, kept)
	}

	for _, prop := range ctdl.QAProperties() {
		profiles := out.Credential.Profiles(prop)
		idx := slices.IndexFunc(profiles, func(p ctdl.ConditionProfile) bool { return p.SubjectWebpage == url })
		if url == "" || idx < 0 {
			continue
		}
		if found == nil {
			qa := c.Clone()
			qa.PropertyType = prop
			qa.TargetNodeType = ctdl.NodeQACredentialOrganization
			found = &qa
		}
		out.Credential.SetProfiles(prop, slices.DeleteFunc(profiles, func(p ctdl.ConditionProfile) bool {
			return p.SubjectWebpage == url
		}))
	}

	switch {
	case url != "" && url == selfURL:
		out.Alignments.Delete(url)
	case found != nil:
		out.Alignments.Set(url, *found)
	}
	return out
}

// rediscover derives the config describing an entry found in sub-list tp
// of a profile under prop. The config's own node type is kept when it
// belongs in the same sub-list.
func rediscover(c Config, prop ctdl.RelationshipProperty, tp ctdl.TargetProperty, entry ctdl.Target) *Config {
	out := c.Clone()
	out.PropertyType = prop

	node := ctdl.NodeTypeFor(tp, entry.Type)
	if own, ok := ctdl.TargetPropertyFor(c.TargetNodeType); ok && own == tp {
		node = c.TargetNodeType
	}
	out.TargetNodeType = node

	if tp == ctdl.TargetCredential && entry.Type != "" && entry.Type != ctdl.EntityType(ctdl.NodeCredential) {
		out.DestinationData["Type"] = entry.Type
	}
	return &out
}
