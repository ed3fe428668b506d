// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Type is a token type.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
	Equal
)

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
	Range:        "'..'",
	Equal:        "'='",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "token(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// Item is a lexed token. Value is a string for identifiers, an int for
// integers and a rune for Raw tokens.
//
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident:
		return "identifier " + strconv.Quote(i.Value.(string))
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	case Raw:
		return "character " + strconv.QuoteRune(i.Value.(rune))
	}
	return i.Type.String()
}

// eof is the rune returned by Next once the input is exhausted.
const eof = -1

// A StateFn is a lexer state. It consumes input, emits at most one token and
// returns the next state. A nil StateFn means lexInit.
//
type StateFn func(l *Lexer) StateFn

// Lexer splits pin specs and connection strings into tokens.
//
type Lexer struct {
	input string
	start int // start of the current token
	pos   int // position after the current rune
	cur   rune
	w     int // width of cur, 0 after Backup
	state StateFn
	items []Item
}

// NewLexer returns a new lexer for i/o specs and connection descriptions.
//
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Lex returns the next token. Once the end of input or an unexpected
// character has been reached, Lex only returns EOF.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = lexInit
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next consumes and returns the next rune, or eof.
//
func (l *Lexer) Next() rune {
	if l.pos >= len(l.input) {
		l.cur, l.w = eof, 0
		return eof
	}
	l.cur, l.w = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.w
	return l.cur
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune { return l.cur }

// Backup undoes the last call to Next. It can only be called once per call
// to Next.
//
func (l *Lexer) Backup() {
	l.pos -= l.w
	l.w = 0
}

// AcceptWhile consumes runes while f returns true.
//
func (l *Lexer) AcceptWhile(f func(r rune) bool) {
	for r := l.Next(); r != eof && f(r); r = l.Next() {
	}
	l.Backup()
}

// Emit emits a token of type t that starts at the start of the current token.
//
func (l *Lexer) Emit(t Type, v interface{}) {
	l.items = append(l.items, Item{t, l.start, v})
}

func lexInit(l *Lexer) StateFn {
	l.start = l.pos
	r := l.Next()
	switch {
	case r == eof:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '[':
		l.Emit(BracketOpen, "[")
	case r == ']':
		l.Emit(BracketClose, "]")
	case r == ',':
		l.Emit(Comma, ",")
	case r == '=':
		l.Emit(Equal, "=")
	case r == '.':
		if l.Next() == '.' {
			l.Emit(Range, "..")
			break
		}
		l.Backup()
		fallthrough
	default:
		l.Emit(Raw, r)
		return lexEOF
	}
	return nil
}

func lexIdent(l *Lexer) StateFn {
	l.AcceptWhile(func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	})
	l.Emit(Ident, l.input[l.start:l.pos])
	return nil
}

func lexNumber(l *Lexer) StateFn {
	n := int(l.Current() - '0')
	for r := l.Next(); '0' <= r && r <= '9'; r = l.Next() {
		n = n*10 + int(r-'0')
	}
	l.Backup()
	l.Emit(Int, n)
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *Lexer) StateFn {
	l.start = len(l.input)
	l.Emit(EOF, nil)
	return lexEOF
}
