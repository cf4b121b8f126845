package utils

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry no combining mark in NFD and would otherwise survive folding.
var specialFolds = strings.NewReplacer(
	"đ", "d",
	"ł", "l",
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ß", "ss",
)

// Normalize is the single canonical string folding used for slugs, search,
// grouping and sorting: lower-case, diacritics stripped, surrounding space trimmed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain keeps state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.TrimSpace(specialFolds.Replace(folded))
}

// Slugify derives a URL-safe path segment from a display name.
func Slugify(s string) string {
	normalized := Normalize(s)
	if normalized == "" {
		return ""
	}

	var builder strings.Builder
	builder.Grow(len(normalized))
	pendingDash := false
	for _, r := range normalized {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			pendingDash = false
			builder.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingDash = true
		}
	}
	return builder.String()
}

var collatorPool = sync.Pool{
	New: func() interface{} {
		return collate.New(language.Slovenian)
	},
}

// Comparator orders strings by their normalized form using Slovenian collation.
// A Comparator is not safe for concurrent use; take one per sort.
type Comparator struct {
	collator *collate.Collator
}

// AcquireComparator returns a pooled comparator. Call Release when done.
func AcquireComparator() *Comparator {
	return &Comparator{collator: collatorPool.Get().(*collate.Collator)}
}

// Release returns the comparator to the pool.
func (c *Comparator) Release() {
	if c.collator != nil {
		collatorPool.Put(c.collator)
		c.collator = nil
	}
}

// Compare compares two already-normalized strings.
func (c *Comparator) Compare(a, b string) int {
	return c.collator.CompareString(a, b)
}

// CompareNormalized compares a and b after Normalize.
func (c *Comparator) CompareNormalized(a, b string) int {
	return c.collator.CompareString(Normalize(a), Normalize(b))
}

// CompareNormalized is a convenience for one-off comparisons.
func CompareNormalized(a, b string) int {
	c := AcquireComparator()
	defer c.Release()
	return c.CompareNormalized(a, b)
}
