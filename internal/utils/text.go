package utils

import (
	"math"    // Rounding
	"regexp"  // Regular expressions
	"strings" // String manipulation
	"unicode" // Rune classes

	"golang.org/x/text/unicode/norm" // Unicode normalisation
)

var (
	tagPattern     = regexp.MustCompile(`(?s)<[^>]*>`)                      // HTML tags
	scriptPattern  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)   // Script blocks with their body
	stylePattern   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)     // Style blocks with their body
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`) // Control characters except tab and newlines
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)                       // Anything not allowed in a slug
	nonSKUPattern  = regexp.MustCompile(`[^A-Z0-9-]+`)
	spacePattern   = regexp.MustCompile(`\s+`)
	slugCheck      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	skuCheck       = regexp.MustCompile(`^[A-Z0-9]+(?:-[A-Z0-9]+)*$`)
	likeReplacer   = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
)

// MaxSearchLength caps user supplied search terms
const MaxSearchLength = 100

// Slugify turns a title into a URL slug
func Slugify(s string) string {
	// Drop accents: decompose then remove combining marks
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	slug := nonSlugPattern.ReplaceAllString(b.String(), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 180 {
		slug = strings.TrimRight(slug[:180], "-")
	}
	return slug
}

// IsSlug reports whether s is already a valid slug
func IsSlug(s string) bool {
	return slugCheck.MatchString(s)
}

// NormalizeSKU upper-cases a SKU and strips disallowed characters
func NormalizeSKU(s string) string {
	return strings.Trim(nonSKUPattern.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "-"), "-")
}

// IsSKU reports whether s is a valid SKU
func IsSKU(s string) bool {
	return skuCheck.MatchString(s)
}

// SanitizeText strips markup and control characters from free text
func SanitizeText(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = stylePattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	s = controlPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeLine is SanitizeText plus whitespace collapsing, for single line fields
func SanitizeLine(s string) string {
	return spacePattern.ReplaceAllString(SanitizeText(s), " ")
}

// SanitizeSearch prepares a search term for a LIKE pattern.
// Wildcards are escaped with '!' so the pattern must be used with ESCAPE '!'.
func SanitizeSearch(s string) string {
	s = SanitizeLine(s)
	if r := []rune(s); len(r) > MaxSearchLength {
		s = string(r[:MaxSearchLength])
	}
	return likeReplacer.Replace(s)
}

// LikePattern wraps a sanitized term for substring matching
func LikePattern(term string) string {
	return "%" + SanitizeSearch(term) + "%"
}

// LikeClause builds an OR of escaped LIKE conditions over columns
func LikeClause(term string, columns ...string) (string, []any) {
	pattern := LikePattern(term)
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		parts[i] = col + " LIKE ? ESCAPE '!'"
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// Round2 rounds to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
