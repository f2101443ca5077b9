// Package match scores whether two company records refer to the same
// real-world entity.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeIdentifier canonicalizes a web address for identity comparison:
// scheme stripped, one leading "www." label stripped, a single trailing
// slash stripped, the remainder lowercased. "HTTPS://WWW.Foo.com/" and
// "foo.com" normalize to the same value.
func NormalizeIdentifier(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, "/")
	return s
}

var (
	deaccent     = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// legalSuffixes are entity suffixes stripped during name normalization.
var legalSuffixes = []string{
	" LLC", " L.L.C.", " INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION", " LTD", " LTD.", " LIMITED",
	" LP", " L.P.", " LLP", " CO", " CO.", " PLC", " GMBH",
}

// NormalizeName standardizes a company name for display-level comparison:
// trimmed, uppercased, diacritics folded, one legal suffix removed,
// punctuation dropped, whitespace collapsed. Names are a diagnostic aid
// only; identity is decided on normalized identifiers.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if folded, _, err := transform.String(deaccent, name); err == nil {
		name = folded
	}
	name = strings.ToUpper(name)

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	name = strings.NewReplacer(
		",", "",
		".", "",
		"'", "",
		"\"", "",
		"&", "AND",
		"-", " ",
	).Replace(name)

	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
