package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ClientData is one end-customer record of a submission.
type ClientData struct {
	Name     string `json:"name"`
	Document string `json:"document"`
}

// SanitizeName trims, drops control characters and collapses inner whitespace.
func SanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, name)
	return strings.Join(strings.Fields(cleaned), " ")
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidDocument reports whether doc (digits only) has a CPF or CNPJ length.
func ValidDocument(doc string) bool {
	return len(doc) == 11 || len(doc) == 14
}

// Normalize returns the sanitized client and whether it is acceptable.
func (c ClientData) Normalize() (ClientData, bool) {
	out := ClientData{Name: SanitizeName(c.Name), Document: DigitsOnly(c.Document)}
	return out, utf8.RuneCountInString(out.Name) >= 2 && ValidDocument(out.Document)
}
