package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/strager/hobbyc/internal/token"
)

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c)
}

// tokenize scans text into a flat token slice, terminated by an EOF token.
// A malformed literal surfaces as an error from the scan point rather than
// as an Illegal token, since every caller needs the position anyway.
func tokenize(text []byte) ([]token.Token, error) {
	var tokens []token.Token
	i := 0
	n := len(text)

	for i < n {
		c := text[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
			continue

		case isDigit(c) || (c == '-' && i+1 < n && isDigit(text[i+1])):
			tok, next, err := scanLiteral(text, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next

		case isLetter(c):
			start := i
			for i < n && isIdentChar(text[i]) {
				i++
			}
			lit := string(text[start:i])
			kind := token.Ident
			if kw, ok := token.Keywords[lit]; ok {
				kind = kw
			}
			tokens = append(tokens, token.Token{Kind: kind, Literal: lit, Offset: start, End: i})

		default:
			kind, width, ok := scanPunct(text[i:])
			if !ok {
				return nil, fmt.Errorf("unexpected character %q at offset %d", c, i)
			}
			tokens = append(tokens, token.Token{Kind: kind, Literal: string(text[i : i+width]), Offset: i, End: i + width})
			i += width
		}
	}

	tokens = append(tokens, token.Token{Kind: token.EOF, Offset: n, End: n})
	return tokens, nil
}

func scanPunct(rest []byte) (token.Kind, int, bool) {
	switch rest[0] {
	case '=':
		return token.Assign, 1, true
	case ',':
		return token.Comma, 1, true
	case ':':
		return token.Colon, 1, true
	case ';':
		return token.Semicolon, 1, true
	case '(':
		return token.LParen, 1, true
	case ')':
		return token.RParen, 1, true
	case '{':
		return token.LBrace, 1, true
	case '}':
		return token.RBrace, 1, true
	case '+':
		return token.Plus, 1, true
	case '-':
		return token.Minus, 1, true
	case '*':
		return token.Star, 1, true
	case '/':
		return token.Slash, 1, true
	case '%':
		return token.Percent, 1, true
	default:
		return token.Illegal, 0, false
	}
}

// scanLiteral reads one `literal ::= signedDigits "i32"` token starting at
// start: an optional leading '-', one or more digits, then the mandatory
// "i32" suffix with no intervening whitespace. Digits are parsed as int64
// first and the sign applied before range-checking against the i32 domain
// — parsing "2147483648" directly as int32 would overflow even though
// "-2147483648" is the valid i32 minimum.
func scanLiteral(text []byte, start int) (token.Token, int, error) {
	i := start
	negative := false
	if text[i] == '-' {
		negative = true
		i++
	}
	digitsStart := i
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	digits := string(text[digitsStart:i])

	if i+3 > len(text) || string(text[i:i+3]) != "i32" {
		return token.Token{}, 0, fmt.Errorf("integer literal %q at offset %d missing 'i32' suffix", string(text[start:i]), start)
	}
	i += 3

	magnitude, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return token.Token{}, 0, fmt.Errorf("invalid integer literal %q at offset %d: %w", string(text[start:i]), start, err)
	}

	value := magnitude
	if negative {
		value = -value
	}
	if value < math.MinInt32 || value > math.MaxInt32 {
		return token.Token{}, 0, fmt.Errorf("integer literal %q at offset %d out of i32 range", string(text[start:i]), start)
	}

	return token.Token{
		Kind:     token.Int,
		Literal:  string(text[start:i]),
		IntValue: int32(value),
		Offset:   start,
		End:      i,
	}, i, nil
}
