package compiler

import (
	"errors"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/roach88/polyconst/internal/ir"
)

// ParseConfig controls name derivation during parsing.
type ParseConfig struct {
	// TypePrefix replaces ir.DefaultTypePrefix in container type names.
	TypePrefix string
}

func (c ParseConfig) prefix() string {
	if c.TypePrefix == "" {
		return ir.DefaultTypePrefix
	}
	return c.TypePrefix
}

// ParseList parses a sequence of declarations. Declarations end at a
// semicolon or at the end of a line that could end a Go statement.
// The first syntax error aborts the whole list.
func ParseList(filename string, src []byte, cfg ParseConfig) ([]ir.Declaration, error) {
	p := newParser(filename, src, cfg)

	var decls []ir.Declaration
	for {
		for p.tok == token.SEMICOLON {
			p.next()
		}
		if p.tok == token.EOF {
			return decls, nil
		}
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, *decl)
	}
}

// ParseDeclaration parses exactly one declaration.
func ParseDeclaration(filename string, src []byte, cfg ParseConfig) (*ir.Declaration, error) {
	p := newParser(filename, src, cfg)

	for p.tok == token.SEMICOLON {
		p.next()
	}
	decl, err := p.parseDecl()
	if err != nil {
		return nil, err
	}
	for p.tok == token.SEMICOLON {
		p.next()
	}
	if p.tok != token.EOF {
		return nil, p.errorf(ErrUnterminated, "expected end of input after %s, found %s", decl.Name, p.describe())
	}
	return decl, nil
}

// ParseInitializer returns the syntax tree of a declaration's initializer.
func ParseInitializer(decl ir.Declaration) (ast.Expr, error) {
	expr, err := goparser.ParseExprFrom(token.NewFileSet(), "", decl.Initializer, 0)
	if err != nil {
		return nil, &SyntaxError{
			Code:    ErrInvalidExpression,
			Message: fmt.Sprintf("invalid initializer: %s", firstMessage(err)),
			Pos:     decl.Pos,
		}
	}
	return expr, nil
}

type parser struct {
	fset    *token.FileSet
	file    *token.File
	src     []byte
	scanner scanner.Scanner
	cfg     ParseConfig

	// current token
	pos token.Pos
	tok token.Token
	lit string

	scanErr string // scanner message for an ILLEGAL current token
	lastLine int   // line of the last non-comment token

	// comment lines directly above the next declaration
	pending    []string
	pendingEnd int
}

func newParser(filename string, src []byte, cfg ParseConfig) *parser {
	p := &parser{
		fset: token.NewFileSet(),
		src:  src,
		cfg:  cfg,
	}
	p.file = p.fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, p.onScanError, scanner.ScanComments)
	p.next()
	return p
}

func (p *parser) onScanError(_ token.Position, msg string) {
	if p.scanErr == "" {
		p.scanErr = msg
	}
}

func (p *parser) next() {
	for {
		p.scanErr = ""
		p.pos, p.tok, p.lit = p.scanner.Scan()
		if p.scanErr != "" {
			p.tok = token.ILLEGAL
			return
		}
		if p.tok != token.COMMENT {
			break
		}
		p.comment()
	}
	p.lastLine = p.file.Line(p.pos)
}

// comment records a comment group as pending attributes. Comments that
// trail a token on the same line, or that are separated from the next
// declaration by a blank line, are dropped.
func (p *parser) comment() {
	line := p.file.Line(p.pos)
	end := p.file.Line(p.pos + token.Pos(len(p.lit)) - 1)
	if line == p.lastLine {
		p.pending = nil
		return
	}
	if len(p.pending) > 0 && line > p.pendingEnd+1 {
		p.pending = nil
	}
	p.pending = append(p.pending, p.lit)
	p.pendingEnd = end
}

func (p *parser) attributes(start token.Pos) []string {
	defer func() { p.pending = nil }()
	if len(p.pending) == 0 || p.pendingEnd != p.file.Line(start)-1 {
		return nil
	}
	return p.pending
}

func (p *parser) parseDecl() (*ir.Declaration, error) {
	start := p.pos
	decl := &ir.Declaration{
		Attributes: p.attributes(start),
		Visibility: ir.Private,
		Pos:        p.file.Position(start),
	}

	if p.tok == token.IDENT && p.lit == "pub" {
		p.next()
		decl.Visibility = ir.Public
		if p.tok == token.LPAREN {
			path, err := p.parseScopePath()
			if err != nil {
				return nil, err
			}
			decl.Visibility = ir.PublicScoped
			decl.ScopePath = path
		}
	}

	switch {
	case p.tok == token.CONST:
		decl.Keyword = ir.KeywordConst
	case p.tok == token.IDENT && p.lit == ir.KeywordStatic:
		decl.Keyword = ir.KeywordStatic
	default:
		return nil, p.errorf(ErrMissingKeyword, "expected const or static, found %s", p.describe())
	}
	p.next()

	if p.tok != token.IDENT {
		return nil, p.errorf(ErrMissingName, "expected constant name, found %s", p.describe())
	}
	decl.Name = ir.NormalizeIdent(p.lit)
	p.next()

	if p.tok != token.COLON {
		return nil, p.errorf(ErrMissingColon, "expected ':' after %s, found %s", decl.Name, p.describe())
	}
	p.next()

	variants, err := p.parseTags()
	if err != nil {
		return nil, err
	}
	decl.Variants = variants

	if p.tok != token.ASSIGN {
		return nil, p.errorf(ErrMissingAssign, "expected '=' after type list, found %s", p.describe())
	}
	p.next()

	expr, err := p.parseInitializer()
	if err != nil {
		return nil, err
	}
	decl.Initializer = expr
	decl.TypeName = ir.TypeName(p.cfg.prefix(), decl.Name, decl.Visibility)

	// parseInitializer stops on the terminator
	p.next()
	return decl, nil
}

// parseScopePath parses "(path)" or "(in path)" after pub.
func (p *parser) parseScopePath() (string, error) {
	p.next() // (
	if p.tok == token.IDENT && p.lit == "in" {
		p.next()
	}
	var b strings.Builder
	for p.tok == token.IDENT {
		b.WriteString(p.lit)
		p.next()
		if p.tok != token.PERIOD && p.tok != token.QUO {
			break
		}
		b.WriteString(p.tok.String())
		p.next()
	}
	if b.Len() == 0 || p.tok != token.RPAREN {
		return "", p.errorf(ErrInvalidVisibility, "malformed visibility scope, found %s", p.describe())
	}
	p.next()
	return b.String(), nil
}

// parseTags parses "tag | tag | ..." where a tag is an identifier or a
// package-qualified identifier.
func (p *parser) parseTags() ([]ir.Variant, error) {
	var variants []ir.Variant
	for {
		if p.tok != token.IDENT {
			return nil, p.errorf(ErrEmptyTypeList, "expected type tag, found %s", p.describe())
		}
		tag := p.lit
		p.next()
		if p.tok == token.PERIOD {
			p.next()
			if p.tok != token.IDENT {
				return nil, p.errorf(ErrEmptyTypeList, "expected type name after %s., found %s", tag, p.describe())
			}
			tag += "." + p.lit
			p.next()
		}
		if tag == "_" {
			return nil, p.errorf(ErrEmptyTypeList, "blank identifier is not a type tag")
		}
		variants = append(variants, Resolve(ir.Shorthand(ir.NormalizeIdent(tag))))

		if p.tok != token.OR {
			return variants, nil
		}
		p.next()
	}
}

// parseInitializer collects the tokens up to the terminator at bracket
// depth zero and checks that they form a Go expression.
func (p *parser) parseInitializer() (string, error) {
	startPos := p.pos
	start, end := p.file.Offset(p.pos), -1
	depth := 0

	for {
		switch p.tok {
		case token.ILLEGAL:
			return "", p.errorf(ErrIllegalToken, "illegal token %q", p.lit)
		case token.EOF:
			if end < 0 {
				return "", p.errorf(ErrMissingInitializer, "missing initializer")
			}
			return "", p.errorf(ErrUnterminated, "unexpected end of input in initializer")
		case token.SEMICOLON:
			if end < 0 {
				return "", p.errorf(ErrMissingInitializer, "missing initializer")
			}
			if depth > 0 {
				return "", p.errorf(ErrUnterminated, "unbalanced brackets in initializer")
			}
			text := string(p.src[start:end])
			if _, err := goparser.ParseExprFrom(token.NewFileSet(), "", text, 0); err != nil {
				return "", &SyntaxError{
					Code:    ErrInvalidExpression,
					Message: fmt.Sprintf("invalid initializer %q: %s", text, firstMessage(err)),
					Pos:     p.file.Position(startPos),
				}
			}
			return text, nil
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
			if depth < 0 {
				return "", p.errorf(ErrInvalidExpression, "unexpected %s in initializer", p.describe())
			}
		}
		end = p.file.Offset(p.pos) + len(p.text())
		p.next()
	}
}

// text is the source spelling of the current token.
func (p *parser) text() string {
	if p.lit != "" && p.tok != token.SEMICOLON {
		return p.lit
	}
	return p.tok.String()
}

func (p *parser) describe() string {
	switch {
	case p.tok == token.EOF:
		return "end of input"
	case p.tok == token.SEMICOLON && p.lit == "\n":
		return "newline"
	case p.tok.IsLiteral():
		return fmt.Sprintf("%s %s", strings.ToLower(p.tok.String()), p.lit)
	case p.tok.IsKeyword():
		return fmt.Sprintf("keyword %s", p.tok)
	}
	return fmt.Sprintf("'%s'", p.tok)
}

func (p *parser) errorf(code, format string, args ...any) *SyntaxError {
	if p.tok == token.ILLEGAL && p.scanErr != "" {
		return &SyntaxError{Code: ErrIllegalToken, Message: p.scanErr, Pos: p.file.Position(p.pos)}
	}
	return &SyntaxError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     p.file.Position(p.pos),
	}
}

// firstMessage strips positions from a go/parser error.
func firstMessage(err error) string {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return list[0].Msg
	}
	return err.Error()
}
