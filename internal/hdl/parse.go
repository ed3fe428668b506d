// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl implements parsing of pin specifications and part connection
// strings.
//
package hdl

import (
	"github.com/pkg/errors"
)

// Pin is a simple pin name
//
type Pin struct {
	Name string
	Pos  int
}

// PinIndex is an indexed pin p[index]
//
type PinIndex struct {
	Pin
	Index int
}

// PinRange is a pin range p[start..end]
//
type PinRange struct {
	Pin
	Start int
	End   int
}

// PinAssignment is a part pin to chip pin assignment. pp=pc
//
type PinAssignment struct {
	LHS interface{}
	RHS interface{}
}

// Parser is a simplistic parser
//
type Parser struct {
	Input string
	l     *Lexer
	i     Item
	state int
}

// parser states. The zero value of a Parser is ready to use.
const (
	stateInit = iota
	stateStarted
	stateDone
)

// Next returns the next item in the input stream or nil once the input is
// exhausted. It only recognizes pin names followed by an optional index or
// range and separated by commas. allowConns specifies if pin assignments
// (connection strings) are supported.
//
func (p *Parser) Next(allowConns bool) (interface{}, error) {
	if p.state == stateDone {
		return nil, nil
	}
	if p.l == nil {
		p.l = NewLexer(p.Input)
	}

	p.i = p.l.Lex()
	if p.state == stateInit && p.i.Type == EOF {
		p.state = stateDone
		return nil, nil
	}
	p.state = stateStarted

	pin, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return pin, nil
	case Equal:
		if allowConns {
			break
		}
		fallthrough
	default:
		p.state = stateDone
		return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
	}

	p.i = p.l.Lex()
	pin2, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return PinAssignment{pin, pin2}, nil
	}

	p.state = stateDone
	return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
}

func (p *Parser) getPin() (interface{}, error) {
	if p.i.Type != Ident {
		return nil, parseError(p.Input, p.i.Pos, "expected pin name")
	}
	pin := Pin{p.i.Value.(string), p.i.Pos}
	// after ident, expect ',', '[', '=' or EOF
	p.i = p.l.Lex()
	if p.i.Type != BracketOpen {
		return pin, nil
	}
	p.i = p.l.Lex()
	if p.i.Type != Int {
		return nil, parseError(p.Input, p.i.Pos, "integer value expected after '['")
	}
	start := p.i.Value.(int)
	end := -1
	p.i = p.l.Lex()
	if p.i.Type == Range {
		p.i = p.l.Lex()
		if p.i.Type != Int {
			return nil, parseError(p.Input, p.i.Pos, "integer value expected after '..'")
		}
		end = p.i.Value.(int)
		p.i = p.l.Lex()
	}
	if p.i.Type != BracketClose {
		return nil, parseError(p.Input, p.i.Pos, "closing ']' expected after index or range")
	}
	p.i = p.l.Lex()
	if end >= 0 {
		return PinRange{pin, start, end}, nil
	}
	return PinIndex{pin, start}, nil
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
