package parser

import (
	"fmt"

	"github.com/KimNorgaard/go-yamlet/internal/lexer"
	"github.com/KimNorgaard/go-yamlet/internal/token"
	"github.com/KimNorgaard/go-yamlet/internal/tree"
)

// Error is a single parse error with its position.
type Error struct {
	Message string
	Line    int
	Column  int
}

// Parser transforms a token stream into a compact syntax tree. Errors
// are collected rather than aborting, so one pass can report several
// problems; callers must treat a non-empty error slice as failure and
// discard the tree.
type Parser struct {
	l   *lexer.Lexer
	t   *tree.Tree
	src []byte

	errs []Error

	cur  token.Token
	peek token.Token
}

// New creates a new parser over src.
func New(src []byte) *Parser {
	p := &Parser{l: lexer.New(src), t: tree.New(src), src: src}
	p.next()
	p.next()
	return p
}

// Errors returns the errors encountered during parsing.
func (p *Parser) Errors() []Error { return p.errs }

// Parse consumes the whole input and returns the tree. The input may
// hold zero or more documents separated by "---" markers; a document
// marker is optional for the first document, and a trailing "..." is
// consumed as an end marker.
func (p *Parser) Parse() *tree.Tree {
	for {
		p.skipNewlines()
		if p.curIs(token.EOF) {
			return p.t
		}
		if p.curIs(token.DOCEND) {
			p.next()
			continue
		}

		dirStart, dirEnd := 0, 0
		if p.curIs(token.DOCSTART) {
			p.next()
			if p.curIs(token.SCALAR) && p.cur.End > p.cur.Start && p.src[p.cur.Start] == '!' {
				dirStart, dirEnd = p.cur.Start+1, p.cur.End
				p.next()
			}
		}

		p.skipNewlines()
		value := tree.NilNode
		if !p.curIs(token.EOF) && !p.curIs(token.DOCSTART) && !p.curIs(token.DOCEND) {
			value = p.parseBlockValue()
		}
		p.t.AddDocument(value, dirStart, dirEnd)

		p.skipNewlines()
		if !p.curIs(token.EOF) && !p.curIs(token.DOCSTART) && !p.curIs(token.DOCEND) {
			p.errorf(p.cur, "unexpected content after document value: %s", p.cur.Type)
			for !p.curIs(token.EOF) && !p.curIs(token.DOCSTART) && !p.curIs(token.DOCEND) {
				p.next()
			}
		}
	}
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.fetch()
}

// fetch pulls the next token, folding lexical errors into the bundle
// so the grammar never sees ILLEGAL tokens.
func (p *Parser) fetch() token.Token {
	for {
		tok := p.l.NextToken()
		if tok.Type != token.ILLEGAL {
			return tok
		}
		p.errs = append(p.errs, Error{Message: tok.Msg, Line: tok.Line, Column: tok.Column})
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errs = append(p.errs, Error{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.next()
	}
}

func isScalarToken(t token.Type) bool {
	return t == token.SCALAR || t == token.SINGLE || t == token.DOUBLE
}

// isKeyStart reports whether the current token opens a block map
// entry: a scalar immediately followed by ':' on the same line.
func (p *Parser) isKeyStart() bool {
	return isScalarToken(p.cur.Type) && p.peekIs(token.COLON) && p.cur.Line == p.peek.Line
}

func atBoundary(t token.Type) bool {
	return t == token.EOF || t == token.DOCSTART || t == token.DOCEND
}

// parseBlockValue parses a value in block context starting at the
// current token's column.
func (p *Parser) parseBlockValue() tree.NodeIndex {
	switch {
	case p.curIs(token.DASH):
		return p.parseBlockList(p.cur.Column)
	case p.isKeyStart():
		return p.parseBlockMap(p.cur.Column)
	default:
		return p.parseFlowValue()
	}
}

// parseBlockList parses dash-introduced entries sharing one column.
// Entry content must sit strictly right of the dash.
func (p *Parser) parseBlockList(col int) tree.NodeIndex {
	var elems []tree.NodeIndex
	for p.curIs(token.DASH) && p.cur.Column == col {
		dash := p.cur
		p.next()

		elem := tree.NilNode
		switch {
		case p.curIs(token.NEWLINE):
			p.skipNewlines()
			if !atBoundary(p.cur.Type) && p.cur.Column > col {
				elem = p.parseBlockValue()
			}
		case atBoundary(p.cur.Type):
			// dash with nothing after it: an empty entry
		default:
			if p.cur.Line != dash.Line {
				p.errorf(p.cur, "list entry content must be indented past its dash")
				break
			}
			elem = p.parseBlockValue()
		}
		elems = append(elems, elem)
		p.skipNewlines()
	}
	return p.t.AddList(elems)
}

// parseBlockMap parses key/value entries sharing one column. A nested
// block value must be indented strictly past the key column, with one
// exception: a block list may sit at the same column as its key.
func (p *Parser) parseBlockMap(col int) tree.NodeIndex {
	var entries []tree.MapEntry
	for p.isKeyStart() && p.cur.Column == col {
		keyTok := p.cur
		key := p.keyRef(keyTok)
		p.next() // key
		p.next() // ':'

		val := tree.NilNode
		if p.curIs(token.NEWLINE) || atBoundary(p.cur.Type) || p.cur.Line != keyTok.Line {
			p.skipNewlines()
			switch {
			case atBoundary(p.cur.Type):
			case p.curIs(token.DASH) && p.cur.Column >= col:
				val = p.parseBlockList(p.cur.Column)
			case p.cur.Column > col:
				val = p.parseBlockValue()
			}
		} else {
			val = p.parseInlineValue()
		}
		entries = append(entries, tree.MapEntry{Key: key, Value: val})
		p.skipNewlines()
	}
	return p.t.AddMap(entries)
}

// parseInlineValue parses the remainder of a map entry's line.
func (p *Parser) parseInlineValue() tree.NodeIndex {
	switch {
	case p.curIs(token.LBRACK), p.curIs(token.LBRACE), isScalarToken(p.cur.Type):
		return p.parseFlowValue()
	default:
		p.errorf(p.cur, "expected value after ':', got %s", p.cur.Type)
		p.recoverLine()
		return tree.NilNode
	}
}

// parseFlowValue parses a scalar or a flow collection.
func (p *Parser) parseFlowValue() tree.NodeIndex {
	switch p.cur.Type {
	case token.LBRACK:
		return p.parseFlowList()
	case token.LBRACE:
		return p.parseFlowMap()
	case token.SCALAR, token.SINGLE, token.DOUBLE:
		n := p.scalarNode(p.cur)
		p.next()
		return n
	default:
		p.errorf(p.cur, "unexpected token %s", p.cur.Type)
		p.next()
		return tree.NilNode
	}
}

// parseFlowList parses "[a, b, c]". One trailing comma is accepted;
// consecutive commas are not.
func (p *Parser) parseFlowList() tree.NodeIndex {
	open := p.cur
	p.next() // '['
	var elems []tree.NodeIndex

	p.skipNewlines()
	if p.curIs(token.RBRACK) {
		p.next()
		return p.t.AddList(elems)
	}

	for {
		if p.curIs(token.EOF) {
			p.errorf(open, "unterminated flow sequence")
			break
		}
		if p.curIs(token.COMMA) {
			p.errorf(p.cur, "unexpected ',' in flow sequence")
			p.next()
			p.skipNewlines()
			continue
		}

		elems = append(elems, p.parseFlowValue())
		p.skipNewlines()

		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
			if p.curIs(token.COMMA) {
				p.errorf(p.cur, "consecutive commas in flow sequence")
				p.next()
				p.skipNewlines()
			}
			if p.curIs(token.RBRACK) {
				p.next()
				return p.t.AddList(elems)
			}
			continue
		}
		if p.curIs(token.RBRACK) {
			p.next()
			return p.t.AddList(elems)
		}
		p.errorf(p.cur, "expected ',' or ']' in flow sequence, got %s", p.cur.Type)
		p.next()
	}
	return p.t.AddList(elems)
}

// parseFlowMap parses "{k: v, ...}" with the same comma rules as flow
// sequences.
func (p *Parser) parseFlowMap() tree.NodeIndex {
	open := p.cur
	p.next() // '{'
	var entries []tree.MapEntry

	p.skipNewlines()
	if p.curIs(token.RBRACE) {
		p.next()
		return p.t.AddMap(entries)
	}

	for {
		if p.curIs(token.EOF) {
			p.errorf(open, "unterminated flow mapping")
			break
		}
		if !isScalarToken(p.cur.Type) {
			p.errorf(p.cur, "expected key in flow mapping, got %s", p.cur.Type)
			p.next()
			p.skipNewlines()
			if p.curIs(token.RBRACE) {
				p.next()
				break
			}
			continue
		}

		key := p.keyRef(p.cur)
		p.next()
		if !p.curIs(token.COLON) {
			p.errorf(p.cur, "expected ':' after key in flow mapping, got %s", p.cur.Type)
			p.next()
			continue
		}
		p.next() // ':'
		p.skipNewlines()

		val := p.parseFlowValue()
		entries = append(entries, tree.MapEntry{Key: key, Value: val})
		p.skipNewlines()

		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
			if p.curIs(token.COMMA) {
				p.errorf(p.cur, "consecutive commas in flow mapping")
				p.next()
				p.skipNewlines()
			}
			if p.curIs(token.RBRACE) {
				p.next()
				return p.t.AddMap(entries)
			}
			continue
		}
		if p.curIs(token.RBRACE) {
			p.next()
			return p.t.AddMap(entries)
		}
		p.errorf(p.cur, "expected ',' or '}' in flow mapping, got %s", p.cur.Type)
		p.next()
	}
	return p.t.AddMap(entries)
}

// scalarNode records a scalar token in the tree. Plain scalars stay
// zero-copy source spans; quoted scalars are unescaped into the string
// table.
func (p *Parser) scalarNode(tok token.Token) tree.NodeIndex {
	raw := p.src[tok.Start:tok.End]
	switch tok.Type {
	case token.SINGLE:
		return p.t.AddString(lexer.UnquoteSingle(raw))
	case token.DOUBLE:
		return p.t.AddString(lexer.UnquoteDouble(raw))
	default:
		return p.t.AddScalar(tok.Start, tok.End)
	}
}

func (p *Parser) keyRef(tok token.Token) tree.KeyRef {
	raw := p.src[tok.Start:tok.End]
	switch tok.Type {
	case token.SINGLE:
		return p.t.InternKey(lexer.UnquoteSingle(raw))
	case token.DOUBLE:
		return p.t.InternKey(lexer.UnquoteDouble(raw))
	default:
		return p.t.KeyFromSpan(tok.Start, tok.End)
	}
}

func (p *Parser) recoverLine() {
	for !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
		p.next()
	}
}
