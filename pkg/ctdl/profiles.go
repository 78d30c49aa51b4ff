package ctdl

// Profile names reserved for profiles the publisher creates and maintains.
// Any other name marks a profile as curated elsewhere.
const (
	CriteriaProfileName   = "Open Badges Criteria"
	AlignmentProfileName  = "Open Badges Alignment"
	OccupationProfileName = "Occupations"
)

// IsOwnedProfileName reports whether name is one of the reserved profile
// names. All ownership checks go through here.
func IsOwnedProfileName(name string) bool {
	switch name {
	case CriteriaProfileName, AlignmentProfileName, OccupationProfileName:
		return true
	}
	return false
}

// IsCriteriaProfile reports whether p is the badge criteria profile, which
// is kept even when it holds no targets.
func IsCriteriaProfile(p ConditionProfile) bool {
	return p.Name == CriteriaProfileName
}

// ProfileNameFor returns the reserved name of the shared profile that holds
// targets of node type n under property p. QA organizations get one profile
// each and have no shared name.
func ProfileNameFor(p RelationshipProperty, n TargetNodeType) string {
	switch {
	case n == NodeQACredentialOrganization:
		return ""
	case n == NodeOccupation:
		return OccupationProfileName
	case p == Requires:
		return CriteriaProfileName
	default:
		return AlignmentProfileName
	}
}
