package irtext

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes the textual IR format described in grammar.go's doc
// comment. Ordering matters: BlockRef (`b7`) and Register (`%7`) must be
// tried before the generic Ident/Integer rules so a literal block or
// register reference is never mis-tokenized as a bare identifier.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"DocComment", `///[^\n]*`, nil},
		{"Comment", `//[^\n]*`, nil},
		{"BlockRef", `b[0-9]+`, nil},
		{"Register", `%[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Punctuation", `[{}(),:.=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
