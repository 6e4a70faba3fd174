package htmltmpl

import (
	"fmt"
	"strings"
)

// SyntaxError reports an invalid ${...} expression in template source.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("htmltmpl: %d:%d: %s", e.Line, e.Column, e.Msg)
}

func newSyntaxError(source string, pos int, msg string) *SyntaxError {
	before := source[:pos]
	line := strings.Count(before, "\n") + 1
	col := pos - strings.LastIndexByte(before, '\n')
	return &SyntaxError{Line: line, Column: col, Msg: msg}
}
