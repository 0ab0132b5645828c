package shared

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSanitizedLength = 100

var (
	trackPrefixPattern = regexp.MustCompile(`^\d+\s*[-_.]?\s*`)
	yearPattern        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	leadingDigits      = regexp.MustCompile(`^\s*(\d+)`)

	titleCaser = cases.Title(language.Und)
)

// sanitizeReplacements is applied in order; the double space entry must come last.
var sanitizeReplacements = []struct{ from, to string }{
	{"&", "e"},
	{"+", "more"},
	{"@", "at"},
	{"<", ""},
	{">", ""},
	{":", "-"},
	{`"`, "'"},
	{"/", "-"},
	{`\`, "-"},
	{"|", "-"},
	{"?", ""},
	{"*", ""},
	{"  ", " "},
}

// unknownSentinels is the one set used everywhere a field is tested for "missing".
var unknownSentinels = map[string]bool{
	"":               true,
	"unknown":        true,
	"unknown artist": true,
	"unknown album":  true,
	"unknown title":  true,
	"<unknown>":      true,
	"untitled":       true,
	"desconhecido":   true,
}

var languageStopwords = []struct {
	lang  string
	words map[string]bool
}{
	{"pt", wordSet("de", "a", "o", "e", "do", "da", "em", "para", "com", "um", "uma")},
	{"en", wordSet("the", "a", "of", "in", "and", "to", "for", "with", "by", "at")},
	{"es", wordSet("el", "la", "de", "y", "en", "un", "una", "para", "con", "por")},
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Normalize folds text into a lookup key: accents and punctuation removed, lower-cased, trimmed.
// Letters of every script are kept.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, text)
	if err != nil {
		decomposed = text
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.TrimSpace(b.String())
}

// Sanitize makes text safe to use as a single path component.
func Sanitize(text string) string {
	result := text
	for _, rep := range sanitizeReplacements {
		result = strings.ReplaceAll(result, rep.from, rep.to)
	}
	result = strings.Map(func(r rune) rune {
		if r < 32 {
			return -1
		}
		return r
	}, result)
	result = strings.TrimLeftFunc(trimTrailingDots(result), unicode.IsSpace)

	if r := []rune(result); len(r) > maxSanitizedLength {
		result = trimTrailingDots(string(r[:maxSanitizedLength]))
	}
	if result == "" {
		return Placeholder
	}
	return result
}

// trimTrailingDots drops trailing dots and spaces, which Windows and FAT refuse in names
func trimTrailingDots(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

// IsUnknown reports whether a field value counts as missing.
func IsUnknown(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return unknownSentinels[v]
}

// AddUnknownSentinels extends the sentinel set, e.g. from configuration.
// It must be called before any pipeline work starts.
func AddUnknownSentinels(values ...string) {
	for _, v := range values {
		unknownSentinels[strings.ToLower(strings.TrimSpace(v))] = true
	}
}

// CleanField applies the cosmetic rules shared by artist, album and title:
// underscores become spaces and all-uppercase values are title-cased.
func CleanField(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
	if isAllUpper(value) {
		value = titleCaser.String(strings.ToLower(value))
	}
	return value
}

func isAllUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

// StripTrackPrefix removes a leading "03 - ", "03_" or "03." style prefix from a title.
func StripTrackPrefix(title string) string {
	return strings.TrimSpace(trackPrefixPattern.ReplaceAllString(title, ""))
}

// ExtractYear returns the first 19xx/20xx year found in a date field, or "".
func ExtractYear(date string) string {
	return yearPattern.FindString(date)
}

// ParseTrackNumber reads the leading digits of a track field ("3/12" -> 3).
// Zero or unparsable input yields 0.
func ParseTrackNumber(field string) int {
	m := leadingDigits.FindStringSubmatch(field)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DetectLanguage guesses pt, en or es by counting stopwords. Ties keep the
// earlier language; no hits yields "unknown".
func DetectLanguage(text string) string {
	counts := make([]int, len(languageStopwords))
	for _, word := range strings.Fields(Normalize(text)) {
		for i, entry := range languageStopwords {
			if entry.words[word] {
				counts[i]++
			}
		}
	}

	detected, best := "unknown", 0
	for i, entry := range languageStopwords {
		if counts[i] > best {
			best = counts[i]
			detected = entry.lang
		}
	}
	return detected
}

// VolumeLabel turns a display name into a FAT32-compatible volume label.
func VolumeLabel(name string) string {
	ascii := strings.ToUpper(unidecode.Unidecode(name))
	var b strings.Builder
	for _, r := range ascii {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() == 11 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

// TruncateString truncates a string to maxLen runes, adding an ellipsis if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
