// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package texenv extracts the first balanced LaTeX environment from exported
// documents and crops .tex files down to that environment.
//
// The scan is line oriented: \begin{...} and \end{...} markers are expected at
// the start of their own lines. No LaTeX grammar is parsed.
package texenv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DefaultEnvironments matches the table-like environments LyX emits for a
// table float: tabular, tabular*, tabularx and friends, and sideways.
const DefaultEnvironments = `tabular[*a-z]?|sideways`

// ErrUnbalanced is matched by UnbalancedError.
var ErrUnbalanced = errors.New("unbalanced environment")

// UnbalancedError reports an environment that was opened but never closed
// before the input ended.
type UnbalancedError struct {
	// Name is the environment name captured from the \begin marker.
	Name string
	// StartLine is the 1-based line of the \begin marker.
	StartLine int
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("unbalanced environment %s, \\begin{%s} was found but \\end{%s} was not",
		e.Name, e.Name, e.Name)
}

// Is lets errors.Is(err, ErrUnbalanced) succeed.
func (e *UnbalancedError) Is(target error) bool {
	return target == ErrUnbalanced
}

// Environment is a region extracted from a document. Lines keep their
// original terminators so the region can be written back byte for byte.
type Environment struct {
	Name      string
	Lines     []string
	StartLine int
	EndLine   int
}

// Found reports whether a region was extracted.
func (e Environment) Found() bool {
	return len(e.Lines) > 0
}

// Len returns the number of lines in the region.
func (e Environment) Len() int {
	return len(e.Lines)
}

// Text joins the region's lines.
func (e Environment) Text() string {
	return strings.Join(e.Lines, "")
}

// Extractor finds the first environment whose name matches a pattern.
type Extractor struct {
	pattern string
	begin   *regexp.Regexp
	end     *regexp.Regexp
}

// NewExtractor compiles begin/end matchers for the environment-name
// alternation envPattern. An empty pattern selects DefaultEnvironments.
func NewExtractor(envPattern string) (*Extractor, error) {
	if envPattern == "" {
		envPattern = DefaultEnvironments
	}
	begin, err := regexp.Compile(`^\s*\\begin\{(` + envPattern + `)\}`)
	if err != nil {
		return nil, fmt.Errorf("compiling environment pattern %q: %w", envPattern, err)
	}
	end, err := regexp.Compile(`^\s*\\end\{(` + envPattern + `)\}`)
	if err != nil {
		return nil, fmt.Errorf("compiling environment pattern %q: %w", envPattern, err)
	}
	return &Extractor{pattern: envPattern, begin: begin, end: end}, nil
}

// MustExtractor is like NewExtractor but panics on an invalid pattern.
func MustExtractor(envPattern string) *Extractor {
	ex, err := NewExtractor(envPattern)
	if err != nil {
		panic(err)
	}
	return ex
}

// Pattern returns the environment-name alternation in use.
func (x *Extractor) Pattern() string { return x.pattern }

// Extract scans r and returns the first matching environment, from its
// \begin line through the \end line carrying the same name. Reading stops
// as soon as the region closes.
//
// When no environment opens, Extract consumes all of r and returns an empty
// Environment with a nil error. When one opens but never closes, it returns
// an *UnbalancedError.
func (x *Extractor) Extract(r io.Reader) (Environment, error) {
	br := bufio.NewReader(r)
	st := scanState{x: x}

	for {
		line, err := br.ReadString('\n')
		if line != "" && st.feed(line) {
			return st.env, nil
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Environment{}, fmt.Errorf("reading line %d: %w", st.lineNo+1, err)
		}
	}
	return st.finish()
}

// ExtractLines is Extract over an in-memory slice of lines.
func (x *Extractor) ExtractLines(lines []string) (Environment, error) {
	st := scanState{x: x}
	for _, line := range lines {
		if st.feed(line) {
			return st.env, nil
		}
	}
	return st.finish()
}

// scanState is the two-state machine behind Extract: searching for a begin
// marker, then collecting until the end marker with the same name.
type scanState struct {
	x      *Extractor
	env    Environment
	open   bool
	lineNo int
}

// feed consumes one line and reports whether the region just closed.
func (s *scanState) feed(line string) bool {
	s.lineNo++
	if !s.open {
		m := s.x.begin.FindStringSubmatch(line)
		if m == nil {
			return false
		}
		s.open = true
		s.env.Name = m[1]
		s.env.StartLine = s.lineNo
		s.env.Lines = append(s.env.Lines, line)
		return false
	}

	s.env.Lines = append(s.env.Lines, line)
	if m := s.x.end.FindStringSubmatch(line); m != nil && m[1] == s.env.Name {
		s.env.EndLine = s.lineNo
		return true
	}
	return false
}

// finish is called when input runs out before the region closed.
func (s *scanState) finish() (Environment, error) {
	if s.open {
		return Environment{}, &UnbalancedError{Name: s.env.Name, StartLine: s.env.StartLine}
	}
	return Environment{}, nil
}
