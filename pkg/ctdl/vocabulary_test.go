package ctdl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/credentialengine/obpublisher/pkg/ctdl"
)

func TestResolveProperty(t *testing.T) {
	tests := []struct {
		name      string
		node      ctdl.TargetNodeType
		suggested ctdl.RelationshipProperty
		want      ctdl.RelationshipProperty
	}{
		{"competency keeps requires", ctdl.NodeCompetency, ctdl.Requires, ctdl.Requires},
		{"competency keeps recommends", ctdl.NodeCompetency, ctdl.Recommends, ctdl.Recommends},
		{"competency rejects qa property", ctdl.NodeCompetency, ctdl.AccreditedBy, ctdl.Requires},
		{"default property resolves", ctdl.NodeDefault, ctdl.PropertyDefault, ctdl.Requires},
		{"occupation keeps prep", ctdl.NodeOccupation, ctdl.IsPreparationFor, ctdl.IsPreparationFor},
		{"occupation never default", ctdl.NodeOccupation, ctdl.PropertyDefault, ctdl.IsRequiredFor},
		{"occupation rejects requires", ctdl.NodeOccupation, ctdl.Requires, ctdl.IsRequiredFor},
		{"qa keeps accredited", ctdl.NodeQACredentialOrganization, ctdl.AccreditedBy, ctdl.AccreditedBy},
		{"qa falls back to recognized", ctdl.NodeQACredentialOrganization, ctdl.Requires, ctdl.RecognizedBy},
		{"course keeps corequisite", ctdl.NodeCourse, ctdl.Corequisite, ctdl.Corequisite},
		{"unknown node uses default set", ctdl.TargetNodeType("Widget"), ctdl.OccupationType, ctdl.Requires},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctdl.ResolveProperty(tt.node, tt.suggested))
		})
	}
}

func TestTargetPropertyFor(t *testing.T) {
	tests := map[ctdl.TargetNodeType]ctdl.TargetProperty{
		ctdl.NodeCompetency:          ctdl.TargetCompetency,
		ctdl.NodeDefault:             ctdl.TargetCompetency,
		ctdl.NodeAssessmentProfile:   ctdl.TargetAssessment,
		ctdl.NodeCourse:              ctdl.TargetLearningOpportunity,
		ctdl.NodeLearningOpportunity: ctdl.TargetLearningOpportunity,
		ctdl.NodeLearningProgram:     ctdl.TargetLearningOpportunity,
		ctdl.NodeCredential:          ctdl.TargetCredential,
		ctdl.NodeOccupation:          ctdl.TargetOccupation,
	}
	for node, want := range tests {
		got, ok := ctdl.TargetPropertyFor(node)
		assert.True(t, ok, node)
		assert.Equal(t, want, got, node)
	}

	_, ok := ctdl.TargetPropertyFor(ctdl.NodeQACredentialOrganization)
	assert.False(t, ok)
}

func TestNodeTypeFor(t *testing.T) {
	assert.Equal(t, ctdl.NodeCompetency, ctdl.NodeTypeFor(ctdl.TargetCompetency, ""))
	assert.Equal(t, ctdl.NodeAssessmentProfile, ctdl.NodeTypeFor(ctdl.TargetAssessment, ""))
	assert.Equal(t, ctdl.NodeCredential, ctdl.NodeTypeFor(ctdl.TargetCredential, "ceterms:Certificate"))
	assert.Equal(t, ctdl.NodeOccupation, ctdl.NodeTypeFor(ctdl.TargetOccupation, ""))
	assert.Equal(t, ctdl.NodeCourse, ctdl.NodeTypeFor(ctdl.TargetLearningOpportunity, "ceterms:Course"))
	assert.Equal(t, ctdl.NodeLearningProgram, ctdl.NodeTypeFor(ctdl.TargetLearningOpportunity, "ceterms:LearningProgram"))
	assert.Equal(t, ctdl.NodeLearningOpportunity, ctdl.NodeTypeFor(ctdl.TargetLearningOpportunity, "ceterms:LearningOpportunityProfile"))
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ctdl.Requires.Valid())
	assert.True(t, ctdl.PropertyDefault.Valid())
	assert.False(t, ctdl.RelationshipProperty("Name").Valid())
	assert.True(t, ctdl.RegulatedBy.IsQA())
	assert.False(t, ctdl.Requires.IsQA())

	assert.True(t, ctdl.NodeQACredentialOrganization.Valid())
	assert.False(t, ctdl.TargetNodeType("Badge").Valid())

	assert.Len(t, ctdl.ConditionProperties(), 9)
	assert.Len(t, ctdl.QAProperties(), 4)
	assert.Len(t, ctdl.AllProperties(), 14)
}

func TestAllowedPropertiesIsACopy(t *testing.T) {
	allowed := ctdl.AllowedProperties(ctdl.NodeOccupation)
	allowed[0] = ctdl.Requires
	assert.Equal(t, ctdl.IsRequiredFor, ctdl.AllowedProperties(ctdl.NodeOccupation)[0])
}

func TestProfileNames(t *testing.T) {
	assert.True(t, ctdl.IsOwnedProfileName("Open Badges Criteria"))
	assert.True(t, ctdl.IsOwnedProfileName("Open Badges Alignment"))
	assert.True(t, ctdl.IsOwnedProfileName("Occupations"))
	assert.False(t, ctdl.IsOwnedProfileName("Admissions"))
	assert.False(t, ctdl.IsOwnedProfileName(""))

	assert.True(t, ctdl.IsCriteriaProfile(ctdl.ConditionProfile{Name: ctdl.CriteriaProfileName}))
	assert.False(t, ctdl.IsCriteriaProfile(ctdl.ConditionProfile{Description: "legacy text"}))

	assert.Equal(t, ctdl.CriteriaProfileName, ctdl.ProfileNameFor(ctdl.Requires, ctdl.NodeCompetency))
	assert.Equal(t, ctdl.AlignmentProfileName, ctdl.ProfileNameFor(ctdl.Recommends, ctdl.NodeCourse))
	assert.Equal(t, ctdl.OccupationProfileName, ctdl.ProfileNameFor(ctdl.IsRequiredFor, ctdl.NodeOccupation))
	assert.Empty(t, ctdl.ProfileNameFor(ctdl.AccreditedBy, ctdl.NodeQACredentialOrganization))
}
