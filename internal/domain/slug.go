package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases, strips accents and joins words with single dashes
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining marks left over from decomposition
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// MakeSlug renders "{id}-{slug}". An untitled post becomes just the id.
func MakeSlug(id int64, title string) string {
	s := Slugify(title)
	if s == "" {
		return strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%d-%s", id, s)
}

// ParseSlugID extracts the id from a slug, a bare id, or a ".../posts/{slug}" URL
func ParseSlugID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "/posts/"); i >= 0 {
		s = s[i+len("/posts/"):]
	}
	s = strings.Trim(s, "/")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlug, s)
	}
	id, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlug, s)
	}
	return id, nil
}
