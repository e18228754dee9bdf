package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9.\-_]`)
	safeName            = regexp.MustCompile(`^[A-Za-z0-9.\-_]+$`)
	nonSlugChars        = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugSeparators      = regexp.MustCompile(`[\s_-]+`)
)

// stripMarks decomposes to NFD and drops combining marks ("ế" -> "e").
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Filename folds diacritics and replaces every character outside
// [A-Za-z0-9.\-_] with an underscore.
func Filename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(stripMarks(name), "_")
}

// IsSafeName reports whether name is a bare file name that cannot escape its
// directory.
func IsSafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return safeName.MatchString(name)
}

// Slug derives a lowercase, hyphenated URL segment from a title.
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	// đ has no decomposition
	s = strings.ReplaceAll(s, "đ", "d")
	s = stripMarks(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
