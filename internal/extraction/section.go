package extraction

import "strings"

// sectionByType is the fixed documentType → section lookup. Matching is
// case-insensitive on the exact type; judgment/appeal types carry court
// level prefixes, so unmatched types fall through to a suffix scan before
// landing in "other".
var sectionByType = map[string]string{
	"poa":           "poa",
	"petition":      "petition",
	"writ petition": "petition",
	"interim order": "order",
	"final order":   "order",
	"order":         "order",
	"judgment":      "judgment",
	"appeal":        "appeal",
	"evidence":      "evidence",
}

// SectionFor derives the coarse section a document's text belongs to.
func SectionFor(documentType string) string {
	key := strings.ToLower(strings.TrimSpace(documentType))
	if s, ok := sectionByType[key]; ok {
		return s
	}
	switch {
	case strings.HasSuffix(key, "judgment"):
		return "judgment"
	case strings.HasSuffix(key, "appeal"):
		return "appeal"
	case strings.HasSuffix(key, "order"):
		return "order"
	}
	return "other"
}
