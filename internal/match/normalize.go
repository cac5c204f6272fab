package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier for comparison: "order_ID", "orderId"
// and "ORDERID" all normalize to "orderid".
func NormalizeIdent(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// TokenizeIdent splits a CamelCase or snake_case identifier into lowercase
// tokens: "XMLParser" gives ["xml", "parser"].
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

// startsToken reports whether runes[i] begins a new CamelCase token.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]

	if !unicode.IsUpper(r) {
		return false
	}

	// "orderID" splits before I.
	if !unicode.IsUpper(prev) && !isSeparator(prev) {
		return true
	}

	// "XMLParser" splits before P.
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
