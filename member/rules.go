package member

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s and strips diacritics so "Casado(a)", "CASADA" and
// "união estável" compare as plain ASCII.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Married reports whether the marital status indicates a marriage or a stable
// union. Marital-dependent fields are printed only when this is true.
func (r *Record) Married() bool {
	s := fold(r.EstadoCivil.String())
	return strings.Contains(s, "casad") || strings.Contains(s, "uniao estavel")
}

// Single reports whether the marital status is single.
func (r *Record) Single() bool {
	return strings.HasPrefix(fold(r.EstadoCivil.String()), "solteir")
}

// PhotoSource validates a photo reference. Only absolute http(s) URLs,
// data:image URIs and root-relative paths are accepted; anything else is
// treated as no photo.
func PhotoSource(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" || strings.ContainsAny(ref, " \t\n\r") {
			return "", false
		}
		return ref, true
	case strings.HasPrefix(lower, "data:image/"):
		return ref, true
	case strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//"):
		return ref, true
	}
	return "", false
}

// PhotoSource returns the record's photo reference when it is acceptable.
func (r *Record) PhotoSource() (string, bool) {
	return PhotoSource(r.Foto.String())
}
