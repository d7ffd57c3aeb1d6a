// Package format normalizes and display-formats the member record values
// printed on cards and registration forms.
//
// Every function is total and idempotent on already formatted input:
// Format(Format(x)) == Format(x). The Display variants escape their result for
// HTML and substitute a non-breaking space for empty output so table and grid
// cells never collapse.
package format

import (
	"html"
	"regexp"
	"strings"
)

// Placeholder is emitted in place of empty values.
const Placeholder = "&nbsp;"

const (
	cpfDigits   = 11
	phoneDigits = 11
)

var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2}))?`)

// NormalizeDigits strips every non-digit character from s.
func NormalizeDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// CPF groups the digits of s as ###.###.###-##. Inputs with fewer than 11
// digits get the matching partial grouping; extra digits are dropped.
func CPF(s string) string {
	d := NormalizeDigits(s)
	if len(d) > cpfDigits {
		d = d[:cpfDigits]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// Phone formats a Brazilian phone number as (DD) DDDD-DDDD or
// (DD) DDDDD-DDDD. A leading country code 55 is stripped from inputs with at
// least 12 digits. Fewer than 3 digits are returned as bare digits.
func Phone(s string) string {
	d := NormalizeDigits(s)
	if len(d) >= 12 && strings.HasPrefix(d, "55") {
		d = d[2:]
	}
	if len(d) > phoneDigits {
		d = d[:phoneDigits]
	}
	switch {
	case len(d) < 3:
		return d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// Date rearranges an ISO date (YYYY-MM-DD) to DD/MM/YYYY. An ISO timestamp
// keeps its hour and minute as a " HH:MM" suffix. Any other input is returned
// trimmed and otherwise unchanged.
func Date(s string) string {
	s = strings.TrimSpace(s)
	m := isoDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	out := m[3] + "/" + m[2] + "/" + m[1]
	if m[4] != "" {
		out += " " + m[4] + ":" + m[5]
	}
	return out
}

// DateShort is Date without the time suffix.
func DateShort(s string) string {
	s = strings.TrimSpace(s)
	m := isoDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[3] + "/" + m[2] + "/" + m[1]
}

// Flag renders a boolean as Sim or Não.
func Flag(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

// Escape HTML-escapes s. It is the only escaping routine the builders use.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Display escapes a trimmed free-text value, or returns Placeholder.
func Display(s string) string {
	return orPlaceholder(Escape(strings.TrimSpace(s)))
}

// DisplayDate formats, escapes and placeholders a date value.
func DisplayDate(s string) string {
	return orPlaceholder(Escape(Date(s)))
}

// DisplayDateShort is DisplayDate without the time suffix.
func DisplayDateShort(s string) string {
	return orPlaceholder(Escape(DateShort(s)))
}

// DisplayCPF formats and placeholders a CPF value.
func DisplayCPF(s string) string {
	return orPlaceholder(Escape(CPF(s)))
}

// DisplayPhone formats and placeholders a phone value.
func DisplayPhone(s string) string {
	return orPlaceholder(Escape(Phone(s)))
}

// DisplayFlag renders b as Sim or Não.
func DisplayFlag(b bool) string {
	return Escape(Flag(b))
}

// DisplayMultiline escapes s and turns line breaks into <br>.
func DisplayMultiline(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return Placeholder
	}
	return strings.ReplaceAll(Escape(s), "\n", "<br>")
}

// Checkbox renders a checked or empty ballot box.
func Checkbox(checked bool) string {
	if checked {
		return "&#9746;"
	}
	return "&#9744;"
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
