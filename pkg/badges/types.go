package badges

// credentialTypes maps Open Badges achievement types to CTDL credential
// classes. Achievement types without a CTDL counterpart publish as
// ceterms:OpenBadge.
var credentialTypes = map[string]string{
	"ApprenticeshipCertificate":   "ceterms:ApprenticeshipCertificate",
	"AssociateDegree":             "ceterms:AssociateDegree",
	"Badge":                       "ceterms:OpenBadge",
	"BachelorDegree":              "ceterms:BachelorDegree",
	"Certificate":                 "ceterms:Certificate",
	"CertificateOfCompletion":     "ceterms:CertificateOfCompletion",
	"Certification":               "ceterms:Certification",
	"Degree":                      "ceterms:Degree",
	"Diploma":                     "ceterms:Diploma",
	"DoctoralDegree":              "ceterms:DoctoralDegree",
	"GeneralEducationDevelopment": "ceterms:GeneralEducationDevelopment",
	"JourneymanCertificate":       "ceterms:JourneymanCertificate",
	"License":                     "ceterms:License",
	"ProfessionalDoctorate":       "ceterms:ProfessionalDoctorate",
	"QualityAssuranceCredential":  "ceterms:QualityAssuranceCredential",
	"MasterCertificate":           "ceterms:MasterCertificate",
	"MasterDegree":                "ceterms:MasterDegree",
	"MicroCredential":             "ceterms:MicroCredential",
	"ResearchDoctorate":           "ceterms:ResearchDoctorate",
	"SecondarySchoolDiploma":      "ceterms:SecondarySchoolDiploma",
}

// DefaultCredentialType is used for achievement types CTDL has no class for.
const DefaultCredentialType = "ceterms:OpenBadge"

// CredentialType returns the CTDL credential class for an achievement type.
func CredentialType(achievementType string) string {
	if t, ok := credentialTypes[achievementType]; ok {
		return t
	}
	return DefaultCredentialType
}
