package garmentag

import "strings"

// ReservedSubstrings mark derived artifacts (segmentation masks) and
// already-tagged photos. Batch runs never classify a file whose name contains
// one of them.
var ReservedSubstrings = []string{
	"_binary_mask", "_fine_mask", UpperSuffix, LowerSuffix,
}

// IsReserved reports whether a file name contains a reserved substring.
// The match is case-sensitive.
func IsReserved(name string) bool {
	for _, p := range ReservedSubstrings {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// hasExtension reports whether name ends in one of exts, ignoring case.
func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
