// Package chunker splits extracted document text into bounded, heading-aware
// chunks, the unit of embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Chunk is one bounded slice of a document.
type Chunk struct {
	Index   int32
	Content string
	// Heading is the nearest markdown heading above the chunk, empty when
	// the document has none.
	Heading string
}

// Options control chunk sizing.
type Options struct {
	// MaxChars bounds a chunk; sections longer than this are split on
	// paragraph boundaries. Default 1500.
	MaxChars int
	// OverlapChars is carried from the tail of a chunk into the next so
	// sentences cut at a boundary stay retrievable. Default 200.
	OverlapChars int
}

func (o *Options) withDefaults() Options {
	opts := Options{MaxChars: 1500, OverlapChars: 200}
	if o != nil {
		if o.MaxChars > 0 {
			opts.MaxChars = o.MaxChars
		}
		if o.OverlapChars > 0 {
			opts.OverlapChars = o.OverlapChars
		}
	}
	if opts.OverlapChars >= opts.MaxChars {
		opts.OverlapChars = opts.MaxChars / 4
	}
	return opts
}

// section is a heading plus the text blocks under it.
type section struct {
	heading string
	blocks  []string
}

// Split chunks a markdown document. Headings open new sections; sections are
// packed into chunks up to MaxChars with OverlapChars carried across splits.
// Non-markdown text degrades gracefully: everything lands in one heading-less
// section and is split purely by size.
func Split(content string, opts *Options) []Chunk {
	o := opts.withDefaults()
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []Chunk{}
	}

	sections := parseSections(trimmed)

	chunks := []Chunk{}
	for _, sec := range sections {
		for _, piece := range packBlocks(sec.blocks, o) {
			chunks = append(chunks, Chunk{
				Index:   int32(len(chunks)),
				Content: piece,
				Heading: sec.heading,
			})
		}
	}
	return chunks
}

// parseSections walks the goldmark AST and groups block text under the most
// recent heading.
func parseSections(content string) []section {
	source := []byte(content)
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	sections := []section{}
	current := section{}
	flush := func() {
		if current.heading != "" || len(current.blocks) > 0 {
			sections = append(sections, current)
		}
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok {
			flush()
			current = section{heading: nodeText(heading, source)}
			continue
		}
		block := nodeText(node, source)
		if block != "" {
			current.blocks = append(current.blocks, block)
		}
	}
	flush()
	return sections
}

// nodeText extracts the raw text of a block node, joining its lines.
func nodeText(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := n.(type) {
		case *ast.Text:
			sb.Write(typed.Segment.Value(source))
			if typed.SoftLineBreak() || typed.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.AutoLink:
			sb.Write(typed.URL(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// packBlocks joins blocks into pieces bounded by MaxChars, carrying overlap
// across piece boundaries. Single blocks over the bound are hard-split.
func packBlocks(blocks []string, o Options) []string {
	pieces := []string{}
	var sb strings.Builder

	emit := func() {
		if sb.Len() == 0 {
			return
		}
		piece := sb.String()
		pieces = append(pieces, piece)
		sb.Reset()
		if o.OverlapChars > 0 && len(piece) > o.OverlapChars {
			sb.WriteString(piece[len(piece)-o.OverlapChars:])
		}
	}

	for _, block := range blocks {
		for len(block) > o.MaxChars {
			cut := splitPoint(block, o.MaxChars)
			appendBlock(&sb, block[:cut], o.MaxChars, emit)
			block = strings.TrimSpace(block[cut:])
		}
		appendBlock(&sb, block, o.MaxChars, emit)
	}
	if sb.Len() > 0 {
		pieces = append(pieces, sb.String())
	}
	return pieces
}

func appendBlock(sb *strings.Builder, block string, maxChars int, emit func()) {
	if block == "" {
		return
	}
	extra := len(block)
	if sb.Len() > 0 {
		extra += 2
	}
	if sb.Len()+extra > maxChars {
		emit()
	}
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	sb.WriteString(block)
}

// splitPoint finds a whitespace near maxChars to cut an oversized block at,
// scanning back up to 200 characters before hard-cutting.
func splitPoint(block string, maxChars int) int {
	floor := maxChars - 200
	if floor < 0 {
		floor = 0
	}
	for i := maxChars - 1; i > floor; i-- {
		if block[i] == ' ' || block[i] == '\n' {
			return i
		}
	}
	return maxChars
}
