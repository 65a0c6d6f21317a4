package token

// Type is the type of a token.
type Type string

// Token represents a lexical token. Start and End are byte offsets of
// the token's text within the source buffer; Line and Column are
// 1-based. Msg carries the diagnostic for ILLEGAL tokens.
type Token struct {
	Type   Type
	Start  int
	End    int
	Line   int
	Column int
	Msg    string
}

const (
	// Special tokens
	ILLEGAL Type = "ILLEGAL" // An unknown or invalid token
	EOF     Type = "EOF"     // End of input
	NEWLINE Type = "NEWLINE" // \n or \r\n

	// Scalars. The span of SINGLE and DOUBLE excludes the surrounding
	// quotes and is not yet unescaped.
	SCALAR Type = "SCALAR" // plain (unquoted) scalar
	SINGLE Type = "SINGLE" // 'single-quoted'
	DOUBLE Type = "DOUBLE" // "double-quoted"

	// Indicators and delimiters
	DASH   Type = "-"
	COLON  Type = ":"
	COMMA  Type = ","
	LBRACK Type = "["
	RBRACK Type = "]"
	LBRACE Type = "{"
	RBRACE Type = "}"

	// Document markers
	DOCSTART Type = "---"
	DOCEND   Type = "..."
)
