// Package markdown splits markdown documents into heading-scoped sections.
package markdown

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Section is the span of a document between two H1/H2 headings.
type Section struct {
	Index      int    // Position in document (0, 1, 2...)
	HeaderPath string // Hierarchy: "# Doc Title > ## Section Name"; empty for a preamble
	Content    string // Section text including its heading line, trimmed
}

// Sectioner splits markdown at H1 and H2 boundaries.
type Sectioner struct {
	md goldmark.Markdown
}

// NewSectioner creates a sectioner configured with the goldmark parser.
func NewSectioner() *Sectioner {
	return &Sectioner{
		md: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

type heading struct {
	offset int // start of the heading's source line
	level  int
}

type boundary struct {
	offset int
	path   string
}

// Split returns the document's sections in order. Sections never overlap:
// an H1 section ends where its first H2 begins. Text before the first
// heading becomes a section with an empty header path. A document without
// headings is returned as one section; blank documents yield none.
func (s *Sectioner) Split(source []byte) ([]Section, error) {
	doc := s.md.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	headings := indexHeadings(doc, source)

	var bounds []boundary
	var visit func(items toc.Items, ancestors []string)
	visit = func(items toc.Items, ancestors []string) {
		for _, item := range items {
			h, ok := headings[string(item.ID)]
			path := ancestors
			if ok {
				path = append(slices.Clone(ancestors), strings.Repeat("#", h.level)+" "+string(item.Title))
				bounds = append(bounds, boundary{offset: h.offset, path: strings.Join(path, " > ")})
			}
			visit(item.Items, path)
		}
	}
	visit(tree.Items, nil)

	slices.SortStableFunc(bounds, func(a, b boundary) int { return a.offset - b.offset })

	if len(bounds) == 0 || bounds[0].offset > 0 {
		bounds = append([]boundary{{offset: 0}}, bounds...)
	}

	sections := make([]Section, 0, len(bounds))
	for i, b := range bounds {
		end := len(source)
		if i+1 < len(bounds) {
			end = bounds[i+1].offset
		}
		content := strings.TrimSpace(string(source[b.offset:end]))
		if content == "" {
			continue
		}
		sections = append(sections, Section{
			Index:      len(sections),
			HeaderPath: b.path,
			Content:    content,
		})
	}

	return sections, nil
}

// indexHeadings maps the auto-generated id of every H1/H2 to its position.
func indexHeadings(doc ast.Node, source []byte) map[string]heading {
	found := make(map[string]heading)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		h := n.(*ast.Heading)
		if h.Level > 2 || h.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		id, ok := h.AttributeString("id")
		if !ok {
			return ast.WalkContinue, nil
		}
		idBytes, ok := id.([]byte)
		if !ok {
			return ast.WalkContinue, nil
		}
		found[string(idBytes)] = heading{
			offset: lineStart(source, h.Lines().At(0).Start),
			level:  h.Level,
		}
		return ast.WalkContinue, nil
	})
	return found
}

func lineStart(source []byte, off int) int {
	for off > 0 && source[off-1] != '\n' {
		off--
	}
	return off
}
