package alignment_test

import (
	"github.com/credentialengine/obpublisher/pkg/alignment"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
)

const (
	competencyURL = "http://example.com/competency/1"
	occupation2   = "http://example.com/occupation/2"
	occupation3   = "http://example.com/occupation/3"
	qaOrg4        = "http://example.com/qa-org/4"
	qaOrg5        = "http://example.com/qa-org/5"
)

func exampleCredential() ctdl.Credential {
	cred := ctdl.Credential{
		CredentialID:            "https://example.com/credentials/a",
		CredentialType:          "ceterms:OpenBadge",
		CredentialStatusType:    "Active",
		Name:                    "Skillful Badge",
		Description:             "Held by skillful people",
		OwnedBy:                 []ctdl.OrgRef{{CTID: "ce-696ea290-249a-4f99-9ed1-419f000d8472"}},
		OfferedBy:               []ctdl.OrgRef{{CTID: "ce-696ea290-249a-4f99-9ed1-419f000d8472"}},
		SubjectWebpage:          "https://example.com/credentials/a",
		InLanguage:              []string{"en-US"},
		UsesVerificationService: []string{"ce-11111111-2222-3333-4444-555555555555"},
	}
	cred.SetProfiles(ctdl.Requires, []ctdl.ConditionProfile{{
		Name:        ctdl.CriteriaProfileName,
		Description: "Earning criteria markdown from the badge system if it was present there",
	}})
	return cred
}

func exampleConfigs() map[string]alignment.Config {
	return map[string]alignment.Config{
		competencyURL: {
			SourceData: alignment.Alignment{
				TargetURL:         competencyURL,
				TargetName:        "Competency 1",
				TargetDescription: "This is the first Competency. It was good.",
				TargetFramework:   "Example Competencies",
				TargetCode:        "COMP1",
			},
			PropertyType:    ctdl.Requires,
			TargetNodeType:  ctdl.NodeCompetency,
			DestinationData: map[string]string{},
		},
		occupation2: {
			SourceData: alignment.Alignment{
				TargetURL:         occupation2,
				TargetName:        "Occupation 2",
				TargetDescription: "This is the second Occupation. It was better.",
			},
			PropertyType:    ctdl.IsRequiredFor,
			TargetNodeType:  ctdl.NodeOccupation,
			DestinationData: map[string]string{},
		},
		occupation3: {
			SourceData: alignment.Alignment{
				TargetURL:         occupation3,
				TargetName:        "Occupation 3",
				TargetDescription: "This is the third Occupation. It is the charm.",
			},
			PropertyType:    ctdl.IsRequiredFor,
			TargetNodeType:  ctdl.NodeOccupation,
			DestinationData: map[string]string{},
		},
		qaOrg4: {
			SourceData: alignment.Alignment{
				TargetURL:         qaOrg4,
				TargetName:        "QA Org 4",
				TargetDescription: "There are at least 4 QA Orgs in the world. This is one of them.",
			},
			PropertyType:    ctdl.AccreditedBy,
			TargetNodeType:  ctdl.NodeQACredentialOrganization,
			DestinationData: map[string]string{},
		},
		qaOrg5: {
			SourceData: alignment.Alignment{
				TargetURL:         qaOrg5,
				TargetName:        "Skippable QA Org 5",
				TargetDescription: "It turns out there must be 5 QA orgs in the world after all.",
			},
			PropertyType:    ctdl.AccreditedBy,
			TargetNodeType:  ctdl.NodeQACredentialOrganization,
			DestinationData: map[string]string{},
			Skip:            true,
		},
	}
}

func exampleMap() alignment.Map {
	configs := exampleConfigs()
	return alignment.NewMap(
		configs[competencyURL],
		configs[occupation2],
		configs[occupation3],
		configs[qaOrg4],
		configs[qaOrg5],
	)
}

func exampleDraft() alignment.Draft {
	return alignment.Draft{
		PublishForOrganizationIdentifier: "abc123",
		Credential:                       exampleCredential(),
		Alignments:                       exampleMap(),
	}
}
