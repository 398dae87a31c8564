package enums

import "fmt"

// PackageTier is the commissioned-song package a customer configures at checkout.
type PackageTier string

const (
	PackageTierSingleVerse PackageTier = "single_verse"
	PackageTierFullSong    PackageTier = "full_song"
	PackageTierPremium     PackageTier = "premium"
)

var validPackageTiers = []PackageTier{
	PackageTierSingleVerse,
	PackageTierFullSong,
	PackageTierPremium,
}

// String implements fmt.Stringer.
func (p PackageTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PackageTier.
func (p PackageTier) IsValid() bool {
	for _, candidate := range validPackageTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePackageTier converts raw input into a PackageTier.
func ParsePackageTier(value string) (PackageTier, error) {
	for _, candidate := range validPackageTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid package tier %q", value)
}
