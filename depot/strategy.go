package depot

import "fmt"

// IncludeStrategy selects which releases contribute to the depot based on
// their prerelease flag.
type IncludeStrategy string

const (
	IncludeAll            IncludeStrategy = "all"
	IncludeStableOnly     IncludeStrategy = "stable-only"
	IncludePrereleaseOnly IncludeStrategy = "prerelease-only"
)

func ParseIncludeStrategy(s string) (IncludeStrategy, error) {
	switch strategy := IncludeStrategy(s); strategy {
	case IncludeAll, IncludeStableOnly, IncludePrereleaseOnly:
		return strategy, nil
	default:
		return "", fmt.Errorf("invalid include strategy %q: must be one of %q, %q or %q",
			s, IncludeAll, IncludeStableOnly, IncludePrereleaseOnly)
	}
}

func (s IncludeStrategy) Includes(zip DownloadableZip) bool {
	switch s {
	case IncludeStableOnly:
		return !zip.Prerelease
	case IncludePrereleaseOnly:
		return zip.Prerelease
	default:
		return true
	}
}

// Filter returns the zips kept by the strategy, preserving order.
func (s IncludeStrategy) Filter(zips []DownloadableZip) []DownloadableZip {
	kept := make([]DownloadableZip, 0, len(zips))
	for _, zip := range zips {
		if s.Includes(zip) {
			kept = append(kept, zip)
		}
	}
	return kept
}
