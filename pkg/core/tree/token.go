package tree

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind distinguishes operand tokens from operator tokens.
type Kind int

const (
	// KindOperand is an identifier or numeric literal.
	KindOperand Kind = iota
	// KindOperator is one of [Operators].
	KindOperator
)

// String returns "operand" or "operator".
func (k Kind) String() string {
	if k == KindOperator {
		return "operator"
	}
	return "operand"
}

// Operators contains the runes recognized as binary operators.
const Operators = "+-*/"

// Token is a unit of the expression.
type Token struct {
	Kind Kind
	Text string
}

// operandRe matches a maximal run of word characters, or a decimal number.
var operandRe = regexp.MustCompile(`\w+|\d+\.?\d*`)

// StripSpace removes every whitespace rune from s.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Tokenize splits expr into its operand and operator streams, each in the
// order the tokens appear in the whitespace-stripped expression.
func Tokenize(expr string) (operands, operators []Token) {
	s := StripSpace(expr)

	for _, m := range operandRe.FindAllString(s, -1) {
		operands = append(operands, Token{Kind: KindOperand, Text: m})
	}
	for _, r := range s {
		if strings.ContainsRune(Operators, r) {
			operators = append(operators, Token{Kind: KindOperator, Text: string(r)})
		}
	}
	return operands, operators
}
