package infer

import "strings"

// Singularize derives a singular type name from a collection name.
//
// Rules, in priority order:
//   - "...ies" -> "...y"   (categories -> category)
//   - "...es"  -> strip "es", unless the word ends "...ses" (boxes -> box)
//   - "...s"   -> strip "s", unless the word ends "...ss"   (tags -> tag)
//   - anything else is returned unchanged
//
// Case of the stem is preserved: "Categories" -> "Category".
func Singularize(word string) string {
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "es") && !strings.HasSuffix(lower, "ses"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

// Pluralize is the inverse transform for the regular-English cases
// Singularize covers: "...y" -> "...ies", sibilant endings take "es",
// everything else takes "s".
func Pluralize(word string) string {
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "y"):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}
