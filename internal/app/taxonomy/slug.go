package taxonomy

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Latin letters with no canonical decomposition, applied after lowercasing.
var transliteration = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ı", "i",
)

// Slugify lowercases s, folds accents ("Café" becomes "cafe"), transliterates
// the few Latin letters that do not decompose ("Straße" becomes "strasse"),
// collapses every run of characters outside [a-z0-9] into a single dash and
// trims dashes. Other scripts produce no slug characters.
func Slugify(s string) string {
	// transform.Chain keeps state, so build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	folded = transliteration.Replace(strings.ToLower(folded))

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// NodeSlug returns the slug for a node: the explicit slug when it has any
// slug characters, else the label's. A node whose slug would be empty cannot
// get a distinct web URL and is rejected.
func NodeSlug(slug, label string) (string, error) {
	if s := Slugify(slug); s != "" {
		return s, nil
	}
	if s := Slugify(label); s != "" {
		return s, nil
	}
	return "", &IntegrityError{
		Kind:    KindMalformed,
		Message: fmt.Sprintf("label %q has no URL-safe characters; provide an explicit slug", label),
	}
}
