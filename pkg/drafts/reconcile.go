package drafts

import (
	"encoding/json"
	"slices"

	"github.com/credentialengine/obpublisher/pkg/alignment"
	"github.com/credentialengine/obpublisher/pkg/ctdl"
)

// Reconcile blends a credential fetched from the registry into the local
// draft and strips from it every alignment the draft already owns.
//
// Badge-sourced scalar fields win when set; the registry copy fills the
// gaps and contributes everything the badge system does not model. Profiles
// under Requires are paired by the criteria name or an equal description
// and blended field by field. The remaining profiles pass through until a
// filter pass over the draft's alignments, and over selfURL, cleans them.
func Reconcile(local alignment.Draft, remote ctdl.Credential, selfURL string) alignment.Draft {
	l := local.Credential
	blended := remote.Clone()

	blended.CredentialID = preferString(l.CredentialID, remote.CredentialID)
	blended.Name = preferString(l.Name, remote.Name)
	blended.Description = preferString(l.Description, remote.Description)
	blended.SubjectWebpage = preferString(l.SubjectWebpage, remote.SubjectWebpage)
	blended.DateEffective = preferString(l.DateEffective, remote.DateEffective)
	blended.Image = preferString(l.Image, remote.Image)
	blended.InLanguage = preferSlice(l.InLanguage, blended.InLanguage)
	blended.Keyword = preferSlice(l.Keyword, blended.Keyword)

	// The registry's view of ownership and type is kept when it has one.
	blended.CredentialType = preferString(remote.CredentialType, l.CredentialType)
	blended.CredentialStatusType = preferString(remote.CredentialStatusType, l.CredentialStatusType)
	blended.OwnedBy = preferSlice(blended.OwnedBy, l.OwnedBy)
	blended.OfferedBy = preferSlice(blended.OfferedBy, l.OfferedBy)
	blended.UsesVerificationService = preferSlice(blended.UsesVerificationService, l.UsesVerificationService)

	blended.SetProfiles(ctdl.Requires, blendRequires(remote.Profiles(ctdl.Requires), l.Profiles(ctdl.Requires)))

	out := alignment.Draft{
		PublishForOrganizationIdentifier: local.PublishForOrganizationIdentifier,
		Credential:                       blended,
		Alignments:                       local.Alignments.Clone(),
	}

	self := alignment.Normalize(alignment.Alignment{
		TargetURL:  selfURL,
		TargetName: blended.Name,
	}, alignment.StandardDefaults())
	out = alignment.FilterAlignmentFromCredential(out, self, selfURL)

	for _, c := range local.Alignments.All() {
		out = alignment.FilterAlignmentFromCredential(out, c, selfURL)
	}
	return out
}

// blendRequires pairs local profiles with remote ones and layers the local
// fields over the remote. Unpaired remote profiles keep their position;
// unpaired local profiles go first.
func blendRequires(remote, local []ctdl.ConditionProfile) []ctdl.ConditionProfile {
	if len(local) == 0 {
		return cloneProfiles(remote)
	}
	if len(remote) == 0 {
		return cloneProfiles(local)
	}

	out := make([]ctdl.ConditionProfile, 0, len(remote)+len(local))
	paired := make([]bool, len(local))
	for _, rp := range remote {
		idx := slices.IndexFunc(local, func(lp ctdl.ConditionProfile) bool { return sameProfile(lp, rp) })
		if idx < 0 || paired[idx] {
			out = append(out, rp.Clone())
			continue
		}
		paired[idx] = true
		out = append(out, overlayProfile(rp, local[idx]))
	}

	var unpaired []ctdl.ConditionProfile
	for i, lp := range local {
		if !paired[i] {
			unpaired = append(unpaired, lp.Clone())
		}
	}
	return append(unpaired, out...)
}

func sameProfile(local, remote ctdl.ConditionProfile) bool {
	if ctdl.IsCriteriaProfile(local) && ctdl.IsCriteriaProfile(remote) {
		return true
	}
	return local.Description != "" && local.Description == remote.Description
}

// overlayProfile copies the set fields of local onto remote. Typed sub-lists
// present locally replace the remote ones.
func overlayProfile(remote, local ctdl.ConditionProfile) ctdl.ConditionProfile {
	out := remote.Clone()
	out.Type = preferString(local.Type, out.Type)
	out.Name = preferString(local.Name, out.Name)
	out.Description = preferString(local.Description, out.Description)
	out.SubjectWebpage = preferString(local.SubjectWebpage, out.SubjectWebpage)

	l := local.Clone()
	for tp, entries := range l.Targets {
		out.SetEntries(tp, entries)
	}
	for k, v := range l.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage, len(l.Extra))
		}
		out.Extra[k] = v
	}
	return out
}

func cloneProfiles(profiles []ctdl.ConditionProfile) []ctdl.ConditionProfile {
	out := make([]ctdl.ConditionProfile, len(profiles))
	for i, p := range profiles {
		out[i] = p.Clone()
	}
	return out
}

func preferString(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

func preferSlice[T any](primary, fallback []T) []T {
	if len(primary) > 0 {
		return slices.Clone(primary)
	}
	return slices.Clone(fallback)
}
