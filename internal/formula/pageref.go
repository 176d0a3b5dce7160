package formula

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PageReference is a parsed external page mention: the @[Label] part of a
// cross-document reference, optionally qualified with an identifier and a
// mention type, e.g. @[Budget](3f2a:page):B2.
//
// Raw preserves the mention exactly as written. NormalizedLabel is the
// lookup form: NFC-normalized, lowercased, and trimmed, so that labels that
// render identically resolve identically.
type PageReference struct {
	Raw             string
	Label           string
	NormalizedLabel string
	Identifier      string
	MentionType     string
}

// NormalizeLabel produces the canonical lookup form of a page label.
// NFC normalization happens before case folding so composed and decomposed
// spellings of the same label compare equal.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(label)))
}

// Key renders the mention back into its canonical string form, used as an
// opaque dependency key and as the per-pass resolution cache key.
func (r *PageReference) Key() string {
	var b strings.Builder
	b.WriteString("@[")
	b.WriteString(r.Label)
	b.WriteString("]")
	if r.Identifier != "" {
		b.WriteString("(")
		b.WriteString(r.Identifier)
		if r.MentionType != "" {
			b.WriteString(":")
			b.WriteString(r.MentionType)
		}
		b.WriteString(")")
	}
	return b.String()
}
