package alignment

import (
	"encoding/json"
	"slices"

	"github.com/credentialengine/obpublisher/pkg/ctdl"
)

// Descriptions given to profiles the merge engine creates.
const (
	criteriaDescription  = "Earning criteria"
	alignmentDescription = "Open Badges Alignment"
)

var occupationDescriptions = map[ctdl.RelationshipProperty]string{
	ctdl.IsRequiredFor:    "Occupations that require this credential",
	ctdl.IsPreparationFor: "Occupations this credential prepares for",
	ctdl.IsRecommendedFor: "Occupations for which this credential is recommended",
}

// MergeAllAlignments folds every non-skipped config of m into cred in
// insertion order.
func MergeAllAlignments(cred ctdl.Credential, m Map) ctdl.Credential {
	out := cred.Clone()
	for _, c := range m.All() {
		if c.Skip {
			continue
		}
		out = MergeSingleAlignment(out, c)
	}
	return out
}

// MergeSingleAlignment files the target described by c under the property
// and typed sub-list its node type calls for. Merging the same config twice
// gives the same credential as merging it once.
func MergeSingleAlignment(cred ctdl.Credential, c Config) ctdl.Credential {
	switch c.TargetNodeType {
	case ctdl.NodeOccupation:
		return MergeOccupationAlignment(cred, c)
	case ctdl.NodeQACredentialOrganization:
		return MergeQAAlignment(cred, c)
	default:
		return mergeTargetAlignment(cred, c)
	}
}

// MergeOccupationAlignment adds an occupation to the shared "Occupations"
// profile of one of the occupation properties.
func MergeOccupationAlignment(cred ctdl.Credential, c Config) ctdl.Credential {
	prop := ctdl.ResolveProperty(ctdl.NodeOccupation, c.PropertyType)
	template := ctdl.ConditionProfile{
		Name:        ctdl.OccupationProfileName,
		Description: occupationDescriptions[prop],
	}
	return mergeShared(cred, prop, template, ctdl.TargetOccupation, entityTarget(c, ctdl.NodeOccupation))
}

// MergeQAAlignment records a quality assurance organization. Each
// organization has its own profile, matched by SubjectWebpage.
func MergeQAAlignment(cred ctdl.Credential, c Config) ctdl.Credential {
	prop := ctdl.ResolveProperty(ctdl.NodeQACredentialOrganization, c.PropertyType)
	a := c.SourceData
	org := ctdl.ConditionProfile{
		Type:           ctdl.EntityType(ctdl.NodeQACredentialOrganization),
		Name:           a.TargetName,
		Description:    a.TargetDescription,
		SubjectWebpage: a.TargetURL,
	}

	out := cred.Clone()
	profiles := out.Profiles(prop)
	idx := slices.IndexFunc(profiles, func(p ctdl.ConditionProfile) bool {
		return p.SubjectWebpage == a.TargetURL
	})
	if idx < 0 {
		out.SetProfiles(prop, slices.Insert(profiles, 0, org))
		return out
	}

	existing := profiles[idx]
	existing.Type = org.Type
	existing.Name = org.Name
	existing.Description = org.Description
	existing.SubjectWebpage = org.SubjectWebpage
	profiles[idx] = existing
	return out
}

// mergeTargetAlignment handles competencies and the typed entity targets.
// Unknown node types are merged as competencies.
func mergeTargetAlignment(cred ctdl.Credential, c Config) ctdl.Credential {
	node := c.TargetNodeType
	tp, ok := ctdl.TargetPropertyFor(node)
	if !ok {
		node, tp = ctdl.NodeDefault, ctdl.TargetCompetency
	}
	prop := ctdl.ResolveProperty(node, c.PropertyType)

	template := ctdl.ConditionProfile{
		Name:        ctdl.ProfileNameFor(prop, node),
		Description: alignmentDescription,
	}
	if ctdl.IsCriteriaProfile(template) {
		template.Description = criteriaDescription
	}

	var entry ctdl.Target
	if tp == ctdl.TargetCompetency {
		entry = competencyTarget(c)
	} else {
		entry = entityTarget(c, node)
	}
	return mergeShared(cred, prop, template, tp, entry)
}

// mergeShared upserts entry into sub-list tp of the profile under prop that
// carries template's name. A missing profile is created from template and
// placed ahead of the existing ones.
func mergeShared(cred ctdl.Credential, prop ctdl.RelationshipProperty, template ctdl.ConditionProfile, tp ctdl.TargetProperty, entry ctdl.Target) ctdl.Credential {
	out := cred.Clone()
	profiles := out.Profiles(prop)
	idx := slices.IndexFunc(profiles, func(p ctdl.ConditionProfile) bool {
		return p.Name == template.Name
	})
	if idx < 0 {
		profile := template
		profile.SetEntries(tp, []ctdl.Target{entry})
		out.SetProfiles(prop, slices.Insert(profiles, 0, profile))
		return out
	}

	profile := profiles[idx]
	profile.SetEntries(tp, upsertTarget(profile.Entries(tp), entry, tp))
	profiles[idx] = profile
	return out
}

// upsertTarget removes every entry sharing entry's URL and appends entry
// layered over the first of them, so fields set by hand survive.
func upsertTarget(entries []ctdl.Target, entry ctdl.Target, tp ctdl.TargetProperty) []ctdl.Target {
	url := entry.URL()
	idx := slices.IndexFunc(entries, func(t ctdl.Target) bool { return t.URL() == url })
	if idx >= 0 {
		entry = overlay(entries[idx], entry, tp == ctdl.TargetCompetency)
	}
	entries = slices.DeleteFunc(entries, func(t ctdl.Target) bool { return t.URL() == url })
	return append(entries, entry)
}

// overlay layers next over prior. Fields derived from the alignment always
// come from next, even when empty. Other modeled fields keep prior's value
// unless next sets them, and extra fields are merged.
func overlay(prior, next ctdl.Target, competency bool) ctdl.Target {
	out := prior.Clone()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	if competency {
		out.TargetNode = next.TargetNode
		out.TargetNodeName = next.TargetNodeName
		out.TargetNodeDescription = next.TargetNodeDescription
		out.FrameworkName = next.FrameworkName
		out.CodedNotation = next.CodedNotation
		set(&out.Type, next.Type)
		set(&out.Name, next.Name)
		set(&out.Description, next.Description)
		set(&out.SubjectWebpage, next.SubjectWebpage)
		if len(next.Identifier) > 0 {
			out.Identifier = slices.Clone(next.Identifier)
		}
	} else {
		out.Type = next.Type
		out.Name = next.Name
		out.Description = next.Description
		out.SubjectWebpage = next.SubjectWebpage
		out.CodedNotation = next.CodedNotation
		out.Identifier = slices.Clone(next.Identifier)
		set(&out.TargetNode, next.TargetNode)
		set(&out.TargetNodeName, next.TargetNodeName)
		set(&out.TargetNodeDescription, next.TargetNodeDescription)
		set(&out.FrameworkName, next.FrameworkName)
	}

	for k, v := range next.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}
	return out
}

func competencyTarget(c Config) ctdl.Target {
	a := c.SourceData
	t := ctdl.Target{
		TargetNode:            a.TargetURL,
		TargetNodeName:        a.TargetName,
		TargetNodeDescription: a.TargetDescription,
		FrameworkName:         a.TargetFramework,
		CodedNotation:         a.TargetCode,
	}
	return applyDestination(t, c.DestinationData)
}

func entityTarget(c Config, node ctdl.TargetNodeType) ctdl.Target {
	a := c.SourceData
	t := ctdl.Target{
		Type:           ctdl.EntityType(node),
		Name:           a.TargetName,
		Description:    a.TargetDescription,
		SubjectWebpage: a.TargetURL,
	}
	if a.TargetCode != "" {
		t.CodedNotation = a.TargetCode
		t.Identifier = []ctdl.IdentifierValue{{
			IdentifierTypeName:  "Code",
			IdentifierValueCode: a.TargetCode,
		}}
	}
	return applyDestination(t, c.DestinationData)
}

// applyDestination writes user overrides onto t. Keys the target does not
// model are kept as extra string fields.
func applyDestination(t ctdl.Target, dest map[string]string) ctdl.Target {
	for k, v := range dest {
		if v == "" {
			continue
		}
		switch k {
		case "Type":
			t.Type = v
		case "Name":
			t.Name = v
		case "Description":
			t.Description = v
		case "FrameworkName":
			t.FrameworkName = v
		case "CodedNotation":
			t.CodedNotation = v
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			if t.Extra == nil {
				t.Extra = make(map[string]json.RawMessage)
			}
			t.Extra[k] = raw
		}
	}
	return t
}
