package search

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer transforms a term before matching.
type Normalizer func(string) string

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// apostrophes are removed outright so "Be'lakor" becomes "belakor" rather than "be lakor".
var apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "", "´", "", "ʼ", "")

// Decode percent-decodes s.
//
// Malformed escapes never fail: an invalid "%" sequence is kept literally while valid escapes around it are decoded.
// Escaped bytes that do not form valid UTF-8 are kept as their original "%XX" text.
func Decode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	if decoded, err := url.PathUnescape(s); err == nil && utf8.ValidString(decoded) {
		return decoded
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		run, n := escapeRun(s[i:])
		if n == 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		writeRun(&b, run, s[i:i+n])
		i += n
	}
	return b.String()
}

// escapeRun decodes the consecutive "%XX" escapes at the start of s and reports how many bytes of s they span.
func escapeRun(s string) ([]byte, int) {
	var run []byte
	n := 0
	for n+2 < len(s) && s[n] == '%' {
		v, err := strconv.ParseUint(s[n+1:n+3], 16, 8)
		if err != nil {
			break
		}
		run = append(run, byte(v))
		n += 3
	}
	return run, n
}

// writeRun writes the valid runes of run, falling back to raw's "%XX" text for each byte that is not.
func writeRun(b *strings.Builder, run []byte, raw string) {
	for j := 0; j < len(run); {
		r, size := utf8.DecodeRune(run[j:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteString(raw[3*j : 3*j+3])
			j++
			continue
		}
		b.Write(run[j : j+size])
		j += size
	}
}

// Fold lowercases s, folds compatibility forms, strips diacritics and transliterates what is left to ASCII.
//
// Punctuation is kept. Whitespace is collapsed and trimmed.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	// letters without a decomposition (ø, æ, ß, ł) only go away here
	s = unidecode.Unidecode(s)

	return collapseSpaces(strings.ToLower(s))
}

// Lower lowercases s and collapses whitespace, preserving accents.
func Lower(s string) string {
	return collapseSpaces(strings.ToLower(s))
}

// Identity returns s unchanged.
func Identity(s string) string {
	return s
}

// StripPunctuation removes apostrophes and turns any other punctuation or symbol into a space.
func StripPunctuation(s string) string {
	s = apostrophes.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}

	return collapseSpaces(b.String())
}

// Canonical is the form stored alongside each band name and compared against folded query variants.
func Canonical(s string) string {
	return StripPunctuation(Fold(Decode(s)))
}

// GetNormalizer returns the folding step for the given mode.
// Default is ascii.
func GetNormalizer(mode string) Normalizer {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "ascii":
		return Fold
	case "unicode":
		return Lower
	case "none":
		return Identity
	default:
		return Fold
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
