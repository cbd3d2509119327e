// Package token defines the lexical token kinds shared by the lexer and
// parser.
package token

// Kind identifies the lexical category of a Token.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident
	Int

	Def
	Fun
	I32
	In
	Out
	InOut

	Assign
	Comma
	Colon
	Semicolon
	LParen
	RParen
	LBrace
	RBrace

	Plus
	Minus
	Star
	Slash
	Percent
)

var names = map[Kind]string{
	EOF:       "EOF",
	Illegal:   "illegal token",
	Ident:     "identifier",
	Int:       "integer literal",
	Def:       "'def'",
	Fun:       "'fun'",
	I32:       "'i32'",
	In:        "'in'",
	Out:       "'out'",
	InOut:     "'inout'",
	Assign:    "'='",
	Comma:     "','",
	Colon:     "':'",
	Semicolon: "';'",
	LParen:    "'('",
	RParen:    "')'",
	LBrace:    "'{'",
	RBrace:    "'}'",
	Plus:      "'+'",
	Minus:     "'-'",
	Star:      "'*'",
	Slash:     "'/'",
	Percent:   "'%'",
}

// String returns a human-readable description suitable for error messages.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown token"
}

// Keywords maps a lowercase identifier spelling to its reserved Kind.
var Keywords = map[string]Kind{
	"def":   Def,
	"fun":   Fun,
	"i32":   I32,
	"in":    In,
	"out":   Out,
	"inout": InOut,
}

// Token is a single lexical unit together with its source extent.
//
// Offset and End are byte offsets into the source text the token was
// scanned from; they are used only for diagnostic position math and for
// recovering the original spelling of a construct (its "representation").
type Token struct {
	Kind     Kind
	Literal  string
	IntValue int32
	Offset   int
	End      int
}
