package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/KimNorgaard/go-yamlet/internal/token"
)

// Lexer holds the state for tokenizing source text. Tokens carry byte
// spans into the source rather than copied literals, so the tree built
// from them can reference the source without allocating per scalar.
type Lexer struct {
	src  []byte
	pos  int
	line int
	col  int

	// flowDepth tracks open '[' and '{'. Inside flow context, commas
	// and closing brackets terminate plain scalars; outside they are
	// ordinary scalar text.
	flowDepth int
}

// New creates and returns a new Lexer for src.
func New(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// NextToken scans the input and returns the next token. Comments are
// consumed here and never surface as tokens.
func (l *Lexer) NextToken() token.Token {
	l.skipSpaces()
	tok := token.Token{Start: l.pos, Line: l.line, Column: l.col}

	if l.pos >= len(l.src) {
		tok.Type = token.EOF
		tok.End = l.pos
		return tok
	}

	switch ch := l.src[l.pos]; ch {
	case '\n':
		l.advance()
		tok.Type = token.NEWLINE
		tok.End = l.pos
		return tok
	case '\r':
		if l.peek() == '\n' {
			l.advance()
			l.advance()
			tok.Type = token.NEWLINE
			tok.End = l.pos
			return tok
		}
		l.advance()
		return l.illegal(tok, "unexpected carriage return")
	case '#':
		if !l.commentAllowed() {
			l.advance()
			return l.illegal(tok, "comment must be separated from preceding content by whitespace")
		}
		l.skipComment()
		return l.NextToken()
	case '[', '{':
		l.flowDepth++
		return l.punct(tok, ch)
	case ']', '}':
		if l.flowDepth > 0 {
			l.flowDepth--
		}
		return l.punct(tok, ch)
	case ',':
		if l.flowDepth > 0 {
			return l.punct(tok, ch)
		}
	case ':':
		if l.colonTerminates(l.pos) {
			return l.punct(tok, ch)
		}
	case '\'':
		return l.scanSingle(tok)
	case '"':
		return l.scanDouble(tok)
	case '-':
		if l.col == 1 && l.hasMarker("---") {
			return l.marker(tok, token.DOCSTART)
		}
		if l.isBoundary(l.pos + 1) {
			l.advance()
			tok.Type = token.DASH
			tok.End = l.pos
			return tok
		}
	case '.':
		if l.col == 1 && l.hasMarker("...") {
			return l.marker(tok, token.DOCEND)
		}
	}

	return l.scanPlain(tok)
}

func (l *Lexer) punct(tok token.Token, ch byte) token.Token {
	l.advance()
	tok.Type = token.Type(ch)
	tok.End = l.pos
	return tok
}

func (l *Lexer) marker(tok token.Token, typ token.Type) token.Token {
	l.advance()
	l.advance()
	l.advance()
	tok.Type = typ
	tok.End = l.pos
	return tok
}

func (l *Lexer) illegal(tok token.Token, msg string) token.Token {
	tok.Type = token.ILLEGAL
	tok.End = l.pos
	tok.Msg = msg
	return tok
}

func (l *Lexer) advance() {
	if l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 0
		}
		l.pos++
		l.col++
	}
}

func (l *Lexer) peek() byte {
	if l.pos+1 < len(l.src) {
		return l.src[l.pos+1]
	}
	return 0
}

func (l *Lexer) skipSpaces() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.advance()
	}
}

func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance()
	}
}

// commentAllowed reports whether a '#' at the current position starts
// a comment. A comment glued to preceding content (for example a
// closing flow bracket) is a lexical error.
func (l *Lexer) commentAllowed() bool {
	if l.pos == 0 {
		return true
	}
	switch l.src[l.pos-1] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// colonTerminates reports whether the ':' at i acts as a key separator
// rather than scalar text. A colon separates only when followed by
// whitespace, end of input, or (in flow context) flow punctuation.
func (l *Lexer) colonTerminates(i int) bool {
	if i+1 >= len(l.src) {
		return true
	}
	switch l.src[i+1] {
	case ' ', '\t', '\n', '\r':
		return true
	case ',', ']', '}':
		return l.flowDepth > 0
	}
	return false
}

// isBoundary reports whether position i is a scalar boundary, used to
// distinguish the '-' sequence indicator from scalars like "-1".
func (l *Lexer) isBoundary(i int) bool {
	if i >= len(l.src) {
		return true
	}
	switch l.src[i] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// hasMarker reports whether a document marker ("---" or "...") starts
// at the current position, followed by a scalar boundary.
func (l *Lexer) hasMarker(m string) bool {
	if l.pos+len(m) > len(l.src) {
		return false
	}
	if string(l.src[l.pos:l.pos+len(m)]) != m {
		return false
	}
	return l.isBoundary(l.pos + len(m))
}

func (l *Lexer) scanPlain(tok token.Token) token.Token {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '\n' || ch == '\r' {
			break
		}
		if l.flowDepth > 0 && (ch == ',' || ch == '[' || ch == ']' || ch == '{' || ch == '}') {
			break
		}
		if ch == ':' && l.colonTerminates(l.pos) {
			break
		}
		if ch == '#' && l.pos > tok.Start {
			if prev := l.src[l.pos-1]; prev == ' ' || prev == '\t' {
				break
			}
		}
		l.advance()
	}

	end := l.pos
	for end > tok.Start && (l.src[end-1] == ' ' || l.src[end-1] == '\t') {
		end--
	}
	tok.Type = token.SCALAR
	tok.End = end
	return tok
}

// scanSingle scans a single-quoted scalar. The only escape is the
// doubled quote; everything else, including newlines and backslashes,
// is literal. The returned span excludes the quotes and is resolved
// later by UnquoteSingle.
func (l *Lexer) scanSingle(tok token.Token) token.Token {
	l.advance() // opening quote
	start := l.pos
	for {
		if l.pos >= len(l.src) {
			return l.illegal(tok, "unterminated single-quoted scalar")
		}
		if l.src[l.pos] == '\'' {
			if l.peek() == '\'' {
				l.advance()
				l.advance()
				continue
			}
			end := l.pos
			l.advance() // closing quote
			tok.Type = token.SINGLE
			tok.Start = start
			tok.End = end
			return tok
		}
		l.advance()
	}
}

// scanDouble scans a double-quoted scalar, validating escape sequences
// as it goes. Unescaped newlines are folded into the value verbatim,
// so a double-quoted scalar may span lines. The span excludes the
// quotes and is resolved later by UnquoteDouble.
func (l *Lexer) scanDouble(tok token.Token) token.Token {
	l.advance() // opening quote
	start := l.pos
	for {
		if l.pos >= len(l.src) {
			return l.illegal(tok, "unterminated double-quoted scalar")
		}
		switch l.src[l.pos] {
		case '"':
			end := l.pos
			l.advance() // closing quote
			tok.Type = token.DOUBLE
			tok.Start = start
			tok.End = end
			return tok
		case '\\':
			l.advance()
			if l.pos >= len(l.src) {
				return l.illegal(tok, "unterminated double-quoted scalar")
			}
			switch e := l.src[l.pos]; e {
			case 'n', 't', 'r', 'b', 'f', '0', '\\', '"', '\'', '/':
				l.advance()
			case 'x':
				if !l.scanHex(2) {
					return l.illegal(tok, `invalid \x escape sequence`)
				}
			case 'u':
				if !l.scanHex(4) {
					return l.illegal(tok, `invalid \u escape sequence`)
				}
			case 'U':
				if !l.scanHex(8) {
					return l.illegal(tok, `invalid \U escape sequence`)
				}
			default:
				l.advance()
				return l.illegal(tok, fmt.Sprintf("invalid escape sequence \\%c", e))
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanHex(n int) bool {
	l.advance() // the x/u/U marker
	for i := 0; i < n; i++ {
		if l.pos >= len(l.src) || !isHexDigit(l.src[l.pos]) {
			return false
		}
		l.advance()
	}
	return true
}

func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// UnquoteSingle resolves the doubled-quote escape in the raw contents
// of a single-quoted scalar. The result is always a fresh buffer.
func UnquoteSingle(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		out = append(out, raw[i])
		if raw[i] == '\'' && i+1 < len(raw) && raw[i+1] == '\'' {
			i++
		}
	}
	return out
}

// UnquoteDouble resolves backslash escapes in the raw contents of a
// double-quoted scalar. The scanner has already validated the escape
// sequences, so malformed input cannot reach this point.
func UnquoteDouble(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch != '\\' {
			out = append(out, ch)
			continue
		}
		i++
		switch e := raw[i]; e {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '0':
			out = append(out, 0)
		case '\\', '"', '\'', '/':
			out = append(out, e)
		case 'x', 'u', 'U':
			n := 2
			if e == 'u' {
				n = 4
			} else if e == 'U' {
				n = 8
			}
			v, _ := strconv.ParseUint(string(raw[i+1:i+1+n]), 16, 32)
			out = utf8.AppendRune(out, rune(v))
			i += n
		}
	}
	return out
}
