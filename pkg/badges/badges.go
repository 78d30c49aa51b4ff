// Package badges converts Open Badges badge classes into credential drafts.
package badges

import (
	"regexp"

	"github.com/credentialengine/obpublisher/pkg/alignment"
	"github.com/credentialengine/obpublisher/pkg/constants"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/errors"
)

// Criteria describes how a badge is earned.
type Criteria struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Narrative string `json:"narrative,omitempty" yaml:"narrative,omitempty"`
}

// BadgeClass is a badge as delivered by a source platform adapter, already
// normalized to the Open Badges 2.0 shape.
type BadgeClass struct {
	ID              string                `json:"id" yaml:"id"`
	Name            string                `json:"name" yaml:"name"`
	Image           string                `json:"image,omitempty" yaml:"image,omitempty"`
	Description     string                `json:"description" yaml:"description"`
	Issuer          string                `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	AchievementType string                `json:"achievementType,omitempty" yaml:"achievementType,omitempty"`
	Tags            []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Criteria        Criteria              `json:"criteria" yaml:"criteria"`
	Alignment       []alignment.Alignment `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	DateEffective   string                `json:"ceterms:dateEffective,omitempty" yaml:"ceterms:dateEffective,omitempty"`
}

// Organization is the publishing organization selected for a session.
type Organization struct {
	CTID                    string `mapstructure:"ctid" json:"ctid" yaml:"ctid"`
	Name                    string `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty"`
	VerificationServiceCTID string `mapstructure:"verification_service" json:"verificationService,omitempty" yaml:"verification_service,omitempty"`
}

var urlLike = regexp.MustCompile(`^https?://`)

// BuildDraft converts b into a draft published for org. Badge alignments
// are normalized with defaults and keyed by target URL in badge order;
// alignments without a URL are dropped.
//
// It fails with errors.ErrNoOrganization when org has no CTID.
func BuildDraft(b BadgeClass, org Organization, defaults alignment.Defaults) (alignment.Draft, error) {
	if org.CTID == "" {
		return alignment.Draft{}, errors.NewPreconditionError("build credential", errors.ErrNoOrganization)
	}
	if b.ID == "" {
		return alignment.Draft{}, errors.NewValidationError("id", b.ID, "badge class id is required")
	}

	criteria := ctdl.ConditionProfile{
		Name:           ctdl.CriteriaProfileName,
		Description:    "Earning criteria",
		SubjectWebpage: b.Criteria.ID,
	}
	if text := MarkdownToText(b.Criteria.Narrative); text != "" {
		criteria.Description = text
	}

	subject := b.Criteria.ID
	if subject == "" {
		subject = b.ID
	}

	achievement := b.AchievementType
	if achievement == "" {
		achievement = "OpenBadge"
	}

	cred := ctdl.Credential{
		CredentialID:         b.ID,
		CredentialType:       CredentialType(achievement),
		CredentialStatusType: "Active",
		Name:                 b.Name,
		Description:          b.Description,
		OwnedBy:              []ctdl.OrgRef{{CTID: org.CTID}},
		OfferedBy:            []ctdl.OrgRef{{CTID: org.CTID}},
		SubjectWebpage:       subject,
		DateEffective:        b.DateEffective,
		InLanguage:           []string{constants.DefaultLanguage},
		Image:                b.Image,
		Keyword:              b.Tags,
	}
	if org.VerificationServiceCTID != "" {
		cred.UsesVerificationService = []string{org.VerificationServiceCTID}
	}
	cred.SetProfiles(ctdl.Requires, []ctdl.ConditionProfile{criteria})

	var configs []alignment.Config
	for _, a := range b.Alignment {
		if a.Validate() != nil {
			continue
		}
		if urlLike.MatchString(a.TargetCode) || a.TargetCode == a.TargetURL {
			a.TargetCode = ""
		}
		configs = append(configs, alignment.Normalize(a, defaults))
	}

	return alignment.Draft{
		PublishForOrganizationIdentifier: org.CTID,
		Credential:                       cred.Clone(),
		Alignments:                       alignment.NewMap(configs...),
	}, nil
}

// BuildDrafts converts every badge, stopping at the first failure.
func BuildDrafts(list []BadgeClass, org Organization, defaults alignment.Defaults) ([]alignment.Draft, error) {
	drafts := make([]alignment.Draft, 0, len(list))
	for _, b := range list {
		d, err := BuildDraft(b, org, defaults)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
