package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "12345678901", NormalizeDigits("123.456.789-01"))
	assert.Equal(t, "", NormalizeDigits("abc"))
	assert.Equal(t, "", NormalizeDigits(""))
}

func TestCPF(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"1":              "1",
		"123":            "123",
		"1234":           "123.4",
		"123456":         "123.456",
		"1234567":        "123.456.7",
		"123456789":      "123.456.789",
		"1234567890":     "123.456.789-0",
		"12345678901":    "123.456.789-01",
		"123456789012":   "123.456.789-01",
		"123.456.789-01": "123.456.789-01",
		"cpf: 123 456":   "123.456",
	}
	for in, want := range cases {
		assert.Equal(t, want, CPF(in), "CPF(%q)", in)
	}
}

func TestCPFLengthIsFunctionOfDigitCount(t *testing.T) {
	digits := "98765432109"
	for n := 0; n <= len(digits); n++ {
		out := CPF(digits[:n])
		added := 0
		switch {
		case n == 0:
		case n <= 3:
		case n <= 6:
			added = 1
		case n <= 9:
			added = 2
		default:
			added = 3
		}
		require.Len(t, out, n+added, "digits=%d out=%q", n, out)
		require.LessOrEqual(t, strings.Count(out, "-"), 1)
		for _, r := range out {
			require.Contains(t, "0123456789.-", string(r))
		}
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"1":                  "1",
		"11":                 "11",
		"119":                "(11) 9",
		"1198765":            "(11) 9876-5",
		"1134567890":         "(11) 3456-7890",
		"11987654321":        "(11) 98765-4321",
		"5511987654321":      "(11) 98765-4321",
		"551134567890":       "(11) 3456-7890",
		"+55 (11) 98765-4321": "(11) 98765-4321",
		"(11) 98765-4321":    "(11) 98765-4321",
	}
	for in, want := range cases {
		assert.Equal(t, want, Phone(in), "Phone(%q)", in)
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "", Date(""))
	assert.Equal(t, "15/03/1990", Date("1990-03-15"))
	assert.Equal(t, "15/03/1990 14:05", Date("1990-03-15T14:05:00Z"))
	assert.Equal(t, "15/03/1990", DateShort("1990-03-15T14:05:00Z"))
	assert.Equal(t, "março de 1990", Date(" março de 1990 "))
	assert.Equal(t, "15/03/1990", Date("15/03/1990"))
}

func TestFormattersAreIdempotent(t *testing.T) {
	inputs := []string{
		"", "1", "12", "123", "12345", "1234567", "12345678901", "123456789012",
		"5511987654321", "551134567890", "(11) 3456-7890", "1990-03-15",
		"1990-03-15T10:00", "15/03/1990", "texto livre", "55123456789012",
	}
	for _, in := range inputs {
		assert.Equal(t, CPF(in), CPF(CPF(in)), "CPF %q", in)
		assert.Equal(t, Phone(in), Phone(Phone(in)), "Phone %q", in)
		assert.Equal(t, Date(in), Date(Date(in)), "Date %q", in)
		assert.Equal(t, DateShort(in), DateShort(DateShort(in)), "DateShort %q", in)
	}
}

func TestDisplayEscapesAndPlaceholders(t *testing.T) {
	assert.Equal(t, Placeholder, Display("   "))
	assert.Equal(t, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;", Display(`<script>alert("x")</script>`))
	assert.Equal(t, Placeholder, DisplayCPF("abc"))
	assert.Equal(t, "123.456.789-01", DisplayCPF("12345678901"))
	assert.Equal(t, Placeholder, DisplayDate(""))
	assert.Equal(t, "(11) 98765-4321", DisplayPhone("11987654321"))
	assert.Equal(t, "Não", DisplayFlag(false))
}

func TestDisplayMultiline(t *testing.T) {
	assert.Equal(t, Placeholder, DisplayMultiline("\n \n"))
	assert.Equal(t, "linha 1<br>&lt;b&gt;linha 2&lt;/b&gt;", DisplayMultiline("linha 1\r\n<b>linha 2</b>"))
}
