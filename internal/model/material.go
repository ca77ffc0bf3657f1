package model

// Material types accepted for pickup.
const (
	MaterialPET      = "PET"
	MaterialHDPE     = "HDPE"
	MaterialAluminum = "aluminum"
	MaterialCopper   = "copper"
	MaterialPaper    = "paper"
	MaterialGlass    = "glass"
)

// AllowedMaterials is the set an order may reference.
var AllowedMaterials = []string{
	MaterialPET,
	MaterialHDPE,
	MaterialAluminum,
	MaterialCopper,
	MaterialPaper,
	MaterialGlass,
}

// IsAllowedMaterial reports whether m is accepted for pickup.
func IsAllowedMaterial(m string) bool {
	for _, v := range AllowedMaterials {
		if v == m {
			return true
		}
	}
	return false
}
