// Package literate loads executable test scenarios out of literate Markdown
// fixtures: a "Test: <name>" heading introduces a `hobby` source fence,
// followed by either an `execute` fence (the expected interpreter result)
// or an `emit-prefix` fence (the expected leading bytes of the compiled
// WebAssembly module, as whitespace-separated hex pairs).
package literate

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind distinguishes the two assertion fences a scenario may carry.
type Kind int

const (
	// Execute scenarios run through the interpreter; ExitCode holds the
	// expected result.
	Execute Kind = iota
	// EmitPrefix scenarios compile to WebAssembly; EmitPrefix holds the
	// expected leading bytes of the module.
	EmitPrefix
)

const (
	fenceSource     = "hobby"
	fenceExecute    = "execute"
	fenceEmitPrefix = "emit-prefix"
)

// Scenario is one "Test: <name>" section extracted from a fixture.
type Scenario struct {
	Name   string
	Source string

	Kind       Kind
	ExitCode   int32  // valid when Kind == Execute
	EmitPrefix []byte // valid when Kind == EmitPrefix

	hasAssertion bool
}

// Load parses markdown and returns every scenario it contains, in document
// order. A heading whose source fence has no following assertion fence, or
// whose assertion fence cannot be decoded, is an error naming the heading.
func Load(markdown []byte) ([]Scenario, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var scenarios []Scenario
	var current *Scenario

	err := gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gast.Heading:
			heading := textOf(node, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return gast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return gast.WalkStop, err
				}
				scenarios = append(scenarios, *current)
			}
			current = &Scenario{Name: strings.TrimPrefix(heading, "Test: ")}

		case *gast.FencedCodeBlock:
			if current == nil {
				return gast.WalkContinue, nil
			}
			language := string(node.Language(markdown))
			content := fenceContent(node, markdown)

			switch language {
			case fenceSource:
				if current.Source != "" {
					return gast.WalkStop, fmt.Errorf("test %q: multiple %s fences", current.Name, fenceSource)
				}
				current.Source = content

			case fenceExecute:
				code, err := strconv.ParseInt(strings.TrimSpace(content), 10, 32)
				if err != nil {
					return gast.WalkStop, fmt.Errorf("test %q: invalid %s fence: %w", current.Name, fenceExecute, err)
				}
				current.Kind = Execute
				current.ExitCode = int32(code)
				current.hasAssertion = true

			case fenceEmitPrefix:
				prefix, err := decodeHexBytes(content)
				if err != nil {
					return gast.WalkStop, fmt.Errorf("test %q: invalid %s fence: %w", current.Name, fenceEmitPrefix, err)
				}
				current.Kind = EmitPrefix
				current.EmitPrefix = prefix
				current.hasAssertion = true
			}
		}
		return gast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, *current)
	}

	return scenarios, nil
}

func validate(s *Scenario) error {
	if s.Source == "" {
		return fmt.Errorf("test %q: no %s fence", s.Name, fenceSource)
	}
	if !s.hasAssertion {
		return fmt.Errorf("test %q: no %s or %s fence", s.Name, fenceExecute, fenceEmitPrefix)
	}
	return nil
}

func textOf(n gast.Node, source []byte) string {
	var buf bytes.Buffer
	gast.Walk(n, func(child gast.Node, entering bool) (gast.WalkStatus, error) {
		if entering {
			if t, ok := child.(*gast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return gast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *gast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func decodeHexBytes(content string) ([]byte, error) {
	fields := strings.Fields(content)
	out := make([]byte, 0, len(fields))
	for _, f := range fields {
		b, err := hex.DecodeString(f)
		if err != nil || len(b) != 1 {
			return nil, fmt.Errorf("expected a two-digit hex byte, found %q", f)
		}
		out = append(out, b[0])
	}
	return out, nil
}
