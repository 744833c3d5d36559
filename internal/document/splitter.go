package document

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// DefaultSeparators are tried in order: paragraphs, lines, sentences, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", ".", " ", ""}

// Splitter cuts text into windows of at most size characters, recursing
// through separators until every piece fits. Adjacent pieces are merged
// back up to size, and consecutive windows share up to overlap characters.
// A separator stays attached to the start of the piece that follows it.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter. Non-positive size or negative overlap select
// the defaults, as does an empty separator list.
func NewSplitter(size, overlap int, separators []string) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = min(DefaultChunkOverlap, size/2)
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{size: size, overlap: overlap, separators: separators}
}

// DefaultSplitter returns a splitter of size 1000 with overlap 100.
func DefaultSplitter() *Splitter {
	return NewSplitter(DefaultChunkSize, DefaultChunkOverlap, DefaultSeparators)
}

// Split returns the windows of text. Empty and whitespace-only windows are dropped.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if length(piece) < s.size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge joins pieces into windows no longer than size, carrying at most
// overlap characters of tail into the next window.
func (s *Splitter) merge(pieces []string) []string {
	var windows, current []string
	total := 0

	for _, piece := range pieces {
		n := length(piece)
		if total+n > s.size && len(current) > 0 {
			if w := join(current); w != "" {
				windows = append(windows, w)
			}
			for total > s.overlap || (total+n > s.size && total > 0) {
				total -= length(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if w := join(current); w != "" {
		windows = append(windows, w)
	}
	return windows
}

func splitKeepingSeparator(text, separator string) []string {
	var pieces []string
	if separator == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, separator)
	for i, part := range parts {
		if i > 0 {
			part = separator + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
