package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentialengine/obpublisher/internal/schema"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/errors"
)

const orgCTID = "ce-696ea290-249a-4f99-9ed1-419f000d8472"

func validBody() ctdl.APICredential {
	cred := ctdl.Credential{
		CredentialID:         "https://example.com/badges/1",
		CredentialType:       "ceterms:OpenBadge",
		CredentialStatusType: "Active",
		Name:                 "Skillful Badge",
		Description:          "Held by skillful people",
		SubjectWebpage:       "https://example.com/badges/1/criteria",
		InLanguage:           []string{"en-US"},
		OwnedBy:              []ctdl.OrgRef{{CTID: orgCTID}},
	}
	profile := ctdl.ConditionProfile{Name: ctdl.CriteriaProfileName, Description: "Earning criteria"}
	profile.SetEntries(ctdl.TargetCompetency, []ctdl.Target{{
		TargetNode:     "http://example.com/competency/1",
		TargetNodeName: "Competency 1",
	}})
	cred.SetProfiles(ctdl.Requires, []ctdl.ConditionProfile{profile})
	cred.SetProfiles(ctdl.AccreditedBy, []ctdl.ConditionProfile{{
		Type:           "ceterms:QACredentialOrganization",
		Name:           "Accreditor",
		SubjectWebpage: "https://accreditor.example.org",
	}})
	return ctdl.APICredential{PublishForOrganizationIdentifier: orgCTID, Credential: cred}
}

func saveValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.Load(schema.SaveCredential)
	require.NoError(t, err)
	return v
}

func TestLoadCachesCompiledSchema(t *testing.T) {
	a := saveValidator(t)
	b := saveValidator(t)
	assert.Same(t, a, b)

	_, err := schema.Load("missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestValidateAcceptsCompleteBody(t *testing.T) {
	assert.NoError(t, saveValidator(t).Validate(validBody()))
}

func TestValidateReportsEveryViolation(t *testing.T) {
	body := validBody()
	body.PublishForOrganizationIdentifier = "not-a-ctid"
	body.Credential.Name = ""
	body.Credential.InLanguage = nil

	err := saveValidator(t).Validate(body)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	joined := strings.Join(errors.Messages(err), "\n")
	assert.Contains(t, joined, "PublishForOrganizationIdentifier")
	assert.Contains(t, joined, "Name")
	assert.Contains(t, joined, "InLanguage")
	assert.GreaterOrEqual(t, len(errors.Messages(err)), 3)
}

func TestValidateChecksTargets(t *testing.T) {
	body := validBody()
	p := body.Credential.Profiles(ctdl.Requires)[0]
	p.SetEntries(ctdl.TargetCompetency, []ctdl.Target{{TargetNode: "http://example.com/competency/1"}})
	body.Credential.SetProfiles(ctdl.Requires, []ctdl.ConditionProfile{p})

	err := saveValidator(t).Validate(body)
	require.Error(t, err)
	assert.Contains(t, strings.Join(errors.Messages(err), "\n"), "TargetNodeName")
}

func TestCompileRejectsBrokenDocuments(t *testing.T) {
	_, err := schema.Compile("broken", []byte("type: [unclosed"))
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCheckOrdersByField(t *testing.T) {
	v, err := schema.Compile("pair", []byte(`
type: object
required: [b, a]
properties:
  a: {type: string}
  b: {type: string}
  z: {type: integer}
`))
	require.NoError(t, err)

	violations, err := v.Check([]byte(`{"z": "text"}`))
	require.NoError(t, err)
	require.Len(t, violations, 3)
	assert.Equal(t, "root", violations[0].Field)
	assert.Equal(t, "z", violations[2].Field)
}
