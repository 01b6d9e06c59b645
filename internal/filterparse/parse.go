// Package filterparse turns filter text and stored filter rows into a
// filterir tree.
//
// Grammar of the text form:
//
//	expr    = and { "~or" and }
//	and     = unary { "~and" unary }
//	unary   = "~not" unary | primary
//	primary = "(" expr ")" | leaf
//	leaf    = "(" field "," op { "," value } ")"
//
// Values may be quoted with ' or " (backslash escapes the next byte);
// unquoted null is SQL NULL. ~and binds tighter than ~or.
//
// The parser does not know column types: a date sub-operator stays the
// first value until filterir.Bind moves it.
package filterparse

import (
	"strings"

	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterir"
)

// Parse parses filter text. Empty text yields a nil node (no filter).
func Parse(where string) (filterir.Node, error) {
	p := &parser{src: where}
	p.skipSpace()
	if p.eof() {
		return nil, nil
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, filtererr.InvalidSyntax(p.pos, "unexpected %q", p.rest(8))
	}
	return n, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) rest(n int) string {
	end := p.pos + n
	if end > len(p.src) {
		end = len(p.src)
	}
	return p.src[p.pos:end]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// keyword consumes "~word" (case-insensitive) if present.
func (p *parser) keyword(word string) bool {
	p.skipSpace()
	kw := "~" + word
	if len(p.src)-p.pos < len(kw) || !strings.EqualFold(p.src[p.pos:p.pos+len(kw)], kw) {
		return false
	}
	p.pos += len(kw)
	return true
}

func (p *parser) parseOr() (filterir.Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []filterir.Node{first}
	for p.keyword("or") {
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return filterir.Or(children...), nil
}

func (p *parser) parseAnd() (filterir.Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []filterir.Node{first}
	for p.keyword("and") {
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return filterir.And(children...), nil
}

func (p *parser) parseUnary() (filterir.Node, error) {
	if p.keyword("not") {
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &filterir.Not{Child: child}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (filterir.Node, error) {
	p.skipSpace()
	if p.peek() != '(' {
		if p.eof() {
			return nil, filtererr.InvalidSyntax(p.pos, "unexpected end of filter, expected \"(\"")
		}
		return nil, filtererr.InvalidSyntax(p.pos, "expected \"(\", got %q", p.rest(8))
	}
	open := p.pos
	p.pos++
	p.skipSpace()

	// "((" or "(~" opens a group; anything else is a leaf.
	if c := p.peek(); c == '(' || c == '~' {
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, filtererr.InvalidSyntax(p.pos, "expected \")\" to close group opened at %d", open)
		}
		p.pos++
		return n, nil
	}
	return p.parseLeaf(open)
}

// parseLeaf reads the items of a leaf after its opening parenthesis.
func (p *parser) parseLeaf(open int) (filterir.Node, error) {
	var items []item
	for {
		it, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, it)

		switch p.peek() {
		case ',':
			p.pos++
			continue
		case ')':
			p.pos++
		default:
			return nil, filtererr.InvalidSyntax(p.pos, "expected \")\" to close comparison opened at %d", open)
		}
		break
	}

	if len(items) < 2 || items[0].isNull || strings.TrimSpace(items[0].text) == "" {
		return nil, filtererr.InvalidSyntax(open, "comparison must be (field,operator[,value...])")
	}
	field := strings.TrimSpace(items[0].text)
	opText := strings.TrimSpace(items[1].text)
	op, ok := filterir.ParseOp(opText)
	if !ok {
		return nil, filtererr.InvalidSyntax(items[1].pos, "unknown operator %q", opText)
	}

	values := make([]any, 0, len(items)-2)
	for _, it := range items[2:] {
		if op.TakesNoValue() && !it.quoted && it.text == "" {
			continue
		}
		if it.isNull {
			values = append(values, nil)
			continue
		}
		values = append(values, it.text)
	}

	return &filterir.Comparison{Field: field, Op: op, Values: values}, nil
}

type item struct {
	text   string
	pos    int
	quoted bool
	isNull bool
}

// parseItem reads one comma-separated element of a leaf, stopping before
// the delimiting "," or ")".
func (p *parser) parseItem() (item, error) {
	p.skipSpace()
	start := p.pos

	if q := p.peek(); q == '\'' || q == '"' {
		p.pos++
		var b strings.Builder
		for {
			if p.eof() {
				return item{}, filtererr.InvalidSyntax(start, "unterminated quoted value")
			}
			c := p.src[p.pos]
			switch {
			case c == '\\' && p.pos+1 < len(p.src):
				b.WriteByte(p.src[p.pos+1])
				p.pos += 2
				continue
			case c == q:
				p.pos++
				p.skipSpace()
				return item{text: b.String(), pos: start, quoted: true}, nil
			}
			b.WriteByte(c)
			p.pos++
		}
	}

	depth := 0
	for !p.eof() {
		c := p.src[p.pos]
		if c == '(' {
			depth++
		} else if c == ')' {
			if depth == 0 {
				break
			}
			depth--
		} else if c == ',' && depth == 0 {
			break
		}
		p.pos++
	}
	if p.eof() {
		return item{}, filtererr.InvalidSyntax(start, "unterminated comparison")
	}

	text := strings.TrimSpace(p.src[start:p.pos])
	return item{text: text, pos: start, isNull: text == "null"}, nil
}
