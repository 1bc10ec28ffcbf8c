// Package lexer turns sigil source text into the ordered token sequence
// consumed by the grammar parsers.
//
// The tokenizer is a single left-to-right pass over the source with a small
// stack of expected closing delimiters. Quoted regions are captured whole;
// nothing inside them is tokenized further. Whitespace, end-of-line and
// comment tokens are preserved here and stripped by the parser's compaction
// passes, so that line-sensitive body output stays reproducible.
package lexer

import (
	"strings"

	"github.com/sigil-lang/sigil/errs"
	"github.com/sigil-lang/sigil/token"
)

const (
	initOpen  = "$init{"
	initClose = "}init$"
)

// operators recognized as standalone delimited tokens.
var operators = map[string]token.Kind{
	"==":       token.Operator,
	"!=":       token.Operator,
	"<":        token.Operator,
	"<=":       token.Operator,
	">":        token.Operator,
	">=":       token.Operator,
	"&&":       token.Operator,
	"||":       token.Operator,
	"+":        token.Operator,
	"-":        token.Operator,
	"*":        token.Operator,
	"/":        token.Operator,
	"%":        token.Operator,
	"?":        token.Operator,
	":":        token.Operator,
	"contains": token.Operator,
	"!":        token.UnaryOperator,
	"->":       token.ChainOperator,
	":=":       token.InitOperator,
	"::=":      token.InitOperator,
}

type opener struct {
	closer byte // expected closing character
	pos    int  // byte offset of the opening token
}

type scanner struct {
	src    string
	pos    int
	toks   []token.Token
	stack  []opener
	inInit bool
}

// Tokenize converts source text into tokens. The returned sequence is always
// terminated by a sentinel EOL token positioned at end of input.
//
// Tokenize fails with a SyntaxError of kind UnbalancedDelimiter if a quote
// or function-nesting region is still open at end of input.
func Tokenize(src string) ([]token.Token, error) {
	s := &scanner{src: src}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.toks, nil
}

func (s *scanner) run() error {
	for s.pos < len(s.src) {
		if err := s.next(); err != nil {
			return err
		}
	}
	if len(s.stack) > 0 {
		open := s.stack[len(s.stack)-1]
		return errs.Syntaxf(errs.UnbalancedDelimiter, open.pos, "",
			"unclosed group, expected %q before end of input", string(open.closer))
	}
	if s.inInit {
		return errs.Syntaxf(errs.UnbalancedDelimiter, s.pos, "",
			"init block not closed, expected %q", initClose)
	}
	s.emit(token.EOL, "", len(s.src))
	return nil
}

func (s *scanner) emit(k token.Kind, text string, pos int) {
	s.toks = append(s.toks, token.Token{Kind: k, Text: text, Pos: pos})
}

func (s *scanner) depth() int { return len(s.stack) }

// next consumes one token starting at s.pos.
func (s *scanner) next() error {
	rest := s.src[s.pos:]
	ch := s.src[s.pos]

	switch {
	case strings.HasPrefix(rest, "//"):
		return s.scanComment()

	case strings.HasPrefix(rest, initOpen):
		s.emit(token.InitBlockStart, initOpen, s.pos)
		s.inInit = true
		s.pos += len(initOpen)
		return nil

	case s.inInit && s.depth() == 0 && strings.HasPrefix(rest, initClose):
		s.emit(token.InitBlockEnd, initClose, s.pos)
		s.inInit = false
		s.pos += len(initClose)
		return nil

	case strings.HasPrefix(rest, "${"):
		s.stack = append(s.stack, opener{closer: '}', pos: s.pos})
		s.emit(token.FunctionStart, "", s.pos)
		s.pos += 2
		return nil

	case ch == '\'' || ch == '"':
		return s.scanQuote(ch)

	case ch == '\n':
		s.emit(token.EOL, "\n", s.pos)
		s.pos++
		return nil

	case ch == '\r':
		// normalize \r\n to one EOL token
		s.emit(token.EOL, "\n", s.pos)
		if strings.HasPrefix(rest, "\r\n") {
			s.pos += 2
		} else {
			s.pos++
		}
		return nil

	case ch == ' ' || ch == '\t':
		start := s.pos
		for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
			s.pos++
		}
		s.emit(token.Whitespace, s.src[start:s.pos], start)
		return nil

	case ch == ',' && s.depth() > 0:
		s.emit(token.Comma, ",", s.pos)
		s.pos++
		return nil

	case ch == ';' && s.inInit && s.depth() == 0:
		s.emit(token.InitEnd, ";", s.pos)
		s.pos++
		return nil

	case (ch == '}' || ch == ')') && s.depth() > 0:
		open := s.stack[len(s.stack)-1]
		if open.closer != ch {
			return errs.Syntaxf(errs.UnbalancedDelimiter, s.pos, string(ch),
				"mismatched delimiter, expected %q", string(open.closer))
		}
		s.stack = s.stack[:len(s.stack)-1]
		s.emit(token.FunctionEnd, string(ch), s.pos)
		s.pos++
		return nil

	case ch == '$':
		return s.scanVariable()

	case ch == '!' && !strings.HasPrefix(rest, "!="):
		s.emit(token.UnaryOperator, "!", s.pos)
		s.pos++
		return nil

	default:
		return s.scanRun()
	}
}

func (s *scanner) scanComment() error {
	start := s.pos
	end := strings.IndexByte(s.src[start:], '\n')
	if end < 0 {
		s.emit(token.Comment, s.src[start:], start)
		s.pos = len(s.src)
		return nil
	}
	s.emit(token.Comment, s.src[start:start+end], start)
	s.pos = start + end
	return nil
}

// scanQuote captures an entire quoted region, delimiters included.
// Quote regions suppress all other grammar recognition.
func (s *scanner) scanQuote(q byte) error {
	start := s.pos
	i := strings.IndexByte(s.src[start+1:], q)
	if i < 0 {
		return errs.Syntaxf(errs.UnbalancedDelimiter, start, string(q), "unterminated quote")
	}
	end := start + 1 + i + 1
	k := token.SingleQuote
	if q == '"' {
		k = token.DoubleQuote
	}
	s.emit(k, s.src[start:end], start)
	s.pos = end
	return nil
}

// scanVariable handles a `$` that did not open an init block or group:
// `$name` is a variable reference; a lone `$` is literal text.
func (s *scanner) scanVariable() error {
	start := s.pos
	i := s.pos + 1
	for i < len(s.src) && isIdentPart(s.src[i]) {
		i++
	}
	if i == s.pos+1 {
		s.emit(token.Text, "$", start)
		s.pos++
		return nil
	}
	s.emit(token.Variable, s.src[start+1:i], start)
	s.pos = i
	return nil
}

// scanRun consumes a run of characters up to the next boundary, then
// classifies the run as a number, boolean, operator, function-call opener
// or plain text.
func (s *scanner) scanRun() error {
	start := s.pos
	i := s.pos
	for i < len(s.src) && !s.boundary(i) {
		i++
	}
	run := s.src[start:i]

	// identifier directly followed by '(' opens a function call
	if i < len(s.src) && s.src[i] == '(' && isIdent(run) {
		s.stack = append(s.stack, opener{closer: ')', pos: start})
		s.emit(token.FunctionStart, run, start)
		s.pos = i + 1
		return nil
	}

	s.pos = i
	switch {
	case run == "true" || run == "false":
		s.emit(token.Boolean, run, start)
	case isNumber(run):
		s.emit(token.Number, run, start)
	default:
		if k, ok := operators[run]; ok {
			s.emit(k, run, start)
		} else {
			s.emit(token.Text, run, start)
		}
	}
	return nil
}

// boundary reports whether the character at i ends a text run.
func (s *scanner) boundary(i int) bool {
	switch s.src[i] {
	case '$', '\'', '"', '\n', '\r', ' ', '\t', '(':
		return true
	case '/':
		return strings.HasPrefix(s.src[i:], "//")
	case ')':
		return s.depth() > 0
	case '}':
		return s.depth() > 0 || (s.inInit && strings.HasPrefix(s.src[i:], initClose))
	case ',':
		return s.depth() > 0
	case ';':
		return s.inInit && s.depth() == 0
	}
	return false
}

func isIdentPart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	if '0' <= s[0] && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i = 1
		if len(s) == 1 {
			return false
		}
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		switch {
		case '0' <= s[i] && s[i] <= '9':
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
