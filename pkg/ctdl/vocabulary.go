package ctdl

import "slices"

// RelationshipProperty names a credential field that holds an ordered list
// of condition profiles.
type RelationshipProperty string

// Relationship properties understood by the engine.
const (
	Requires              RelationshipProperty = "Requires"
	AdvancedStandingFrom  RelationshipProperty = "AdvancedStandingFrom"
	Corequisite           RelationshipProperty = "Corequisite"
	IsAdvancedStandingFor RelationshipProperty = "IsAdvancedStandingFor"
	IsPreparationFor      RelationshipProperty = "IsPreparationFor"
	IsRecommendedFor      RelationshipProperty = "IsRecommendedFor"
	IsRequiredFor         RelationshipProperty = "IsRequiredFor"
	PreparationFrom       RelationshipProperty = "PreparationFrom"
	Recommends            RelationshipProperty = "Recommends"
	AccreditedBy          RelationshipProperty = "AccreditedBy"
	ApprovedBy            RelationshipProperty = "ApprovedBy"
	RecognizedBy          RelationshipProperty = "RecognizedBy"
	RegulatedBy           RelationshipProperty = "RegulatedBy"
	OccupationType        RelationshipProperty = "OccupationType"

	// PropertyDefault defers the choice to the node type's first allowed property.
	PropertyDefault RelationshipProperty = "DEFAULT"
)

var (
	// conditionProperties hold shared, named condition profiles.
	conditionProperties = []RelationshipProperty{
		Requires,
		AdvancedStandingFrom,
		Corequisite,
		IsAdvancedStandingFor,
		IsPreparationFor,
		IsRecommendedFor,
		IsRequiredFor,
		PreparationFrom,
		Recommends,
	}

	// qaProperties hold one entry per quality assurance organization.
	qaProperties = []RelationshipProperty{
		AccreditedBy,
		ApprovedBy,
		RecognizedBy,
		RegulatedBy,
	}

	allProperties = append(append(slices.Clone(conditionProperties), qaProperties...), OccupationType)
)

// ConditionProperties returns the properties holding shared condition profiles.
func ConditionProperties() []RelationshipProperty {
	return slices.Clone(conditionProperties)
}

// QAProperties returns the quality assurance organization properties.
func QAProperties() []RelationshipProperty {
	return slices.Clone(qaProperties)
}

// AllProperties returns every relationship property in wire order.
func AllProperties() []RelationshipProperty {
	return slices.Clone(allProperties)
}

// Valid reports whether p is a known relationship property or DEFAULT.
func (p RelationshipProperty) Valid() bool {
	return p == PropertyDefault || slices.Contains(allProperties, p)
}

// IsQA reports whether p holds quality assurance organizations.
func (p RelationshipProperty) IsQA() bool {
	return slices.Contains(qaProperties, p)
}

// TargetNodeType is the category of object an alignment points to.
type TargetNodeType string

// Target node types.
const (
	NodeCompetency               TargetNodeType = "Competency"
	NodeAssessmentProfile        TargetNodeType = "AssessmentProfile"
	NodeCourse                   TargetNodeType = "Course"
	NodeCredential               TargetNodeType = "Credential"
	NodeLearningOpportunity      TargetNodeType = "LearningOpportunity"
	NodeLearningProgram          TargetNodeType = "LearningProgram"
	NodeOccupation               TargetNodeType = "Occupation"
	NodeQACredentialOrganization TargetNodeType = "QACredentialOrganization"
	NodeDefault                  TargetNodeType = "DEFAULT"
)

var nodeTypes = []TargetNodeType{
	NodeCompetency,
	NodeAssessmentProfile,
	NodeCourse,
	NodeCredential,
	NodeLearningOpportunity,
	NodeLearningProgram,
	NodeOccupation,
	NodeQACredentialOrganization,
	NodeDefault,
}

// NodeTypes returns every target node type.
func NodeTypes() []TargetNodeType {
	return slices.Clone(nodeTypes)
}

// Valid reports whether n is a known node type.
func (n TargetNodeType) Valid() bool {
	return slices.Contains(nodeTypes, n)
}

// TargetProperty names a typed sub-list on a condition profile.
type TargetProperty string

// Typed sub-lists of a condition profile.
const (
	TargetAssessment          TargetProperty = "TargetAssessment"
	TargetCompetency          TargetProperty = "TargetCompetency"
	TargetCredential          TargetProperty = "TargetCredential"
	TargetLearningOpportunity TargetProperty = "TargetLearningOpportunity"
	TargetOccupation          TargetProperty = "TargetOccupation"
)

var targetProperties = []TargetProperty{
	TargetAssessment,
	TargetCompetency,
	TargetCredential,
	TargetLearningOpportunity,
	TargetOccupation,
}

// TargetProperties returns every typed sub-list in wire order.
func TargetProperties() []TargetProperty {
	return slices.Clone(targetProperties)
}

// allowedProperties is the property-per-node-type whitelist. The first
// entry is used when a suggestion is not allowed.
var allowedProperties = map[TargetNodeType][]RelationshipProperty{
	NodeCompetency:               conditionProperties,
	NodeDefault:                  conditionProperties,
	NodeAssessmentProfile:        conditionProperties,
	NodeCourse:                   conditionProperties,
	NodeCredential:               conditionProperties,
	NodeLearningOpportunity:      conditionProperties,
	NodeLearningProgram:          conditionProperties,
	NodeOccupation:               {IsRequiredFor, IsPreparationFor, IsRecommendedFor},
	NodeQACredentialOrganization: {RecognizedBy, AccreditedBy, ApprovedBy, RegulatedBy},
}

// AllowedProperties returns the relationship properties legal for n.
// Unknown node types fall back to the DEFAULT set.
func AllowedProperties(n TargetNodeType) []RelationshipProperty {
	allowed, ok := allowedProperties[n]
	if !ok {
		allowed = allowedProperties[NodeDefault]
	}
	return slices.Clone(allowed)
}

// ResolveProperty returns suggested if it is legal for n, otherwise the
// first allowed property for n.
func ResolveProperty(n TargetNodeType, suggested RelationshipProperty) RelationshipProperty {
	allowed := AllowedProperties(n)
	if slices.Contains(allowed, suggested) {
		return suggested
	}
	return allowed[0]
}

// TargetPropertyFor returns the typed sub-list that holds entries of node
// type n. QA organizations are not nested in a sub-list.
func TargetPropertyFor(n TargetNodeType) (TargetProperty, bool) {
	switch n {
	case NodeCompetency, NodeDefault:
		return TargetCompetency, true
	case NodeAssessmentProfile:
		return TargetAssessment, true
	case NodeCourse, NodeLearningOpportunity, NodeLearningProgram:
		return TargetLearningOpportunity, true
	case NodeCredential:
		return TargetCredential, true
	case NodeOccupation:
		return TargetOccupation, true
	default:
		return "", false
	}
}

// entityTypes maps node types to the CTDL class written into Type.
var entityTypes = map[TargetNodeType]string{
	NodeAssessmentProfile:        "ceterms:AssessmentProfile",
	NodeCourse:                   "ceterms:Course",
	NodeCredential:               "ceterms:Credential",
	NodeLearningOpportunity:      "ceterms:LearningOpportunityProfile",
	NodeLearningProgram:          "ceterms:LearningProgram",
	NodeOccupation:               "ceterms:Occupation",
	NodeQACredentialOrganization: "ceterms:QACredentialOrganization",
}

// EntityType returns the CTDL class for n, or "" for competencies.
func EntityType(n TargetNodeType) string {
	return entityTypes[n]
}

// NodeTypeFor infers the node type of an entry found in sub-list tp.
// entryType disambiguates learning opportunity subclasses.
func NodeTypeFor(tp TargetProperty, entryType string) TargetNodeType {
	switch tp {
	case TargetAssessment:
		return NodeAssessmentProfile
	case TargetCredential:
		return NodeCredential
	case TargetOccupation:
		return NodeOccupation
	case TargetLearningOpportunity:
		switch entryType {
		case entityTypes[NodeCourse]:
			return NodeCourse
		case entityTypes[NodeLearningProgram]:
			return NodeLearningProgram
		}
		return NodeLearningOpportunity
	default:
		return NodeCompetency
	}
}
