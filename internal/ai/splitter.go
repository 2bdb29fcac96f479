package ai

import (
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks long text into overlapping chunks. It prefers paragraph
// breaks, then line breaks, then spaces, and splits between characters
// only as a last resort. No chunk exceeds Size characters and consecutive
// chunks share at most Overlap characters.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

// NewSplitter creates a Splitter with the default separators.
func NewSplitter(size, overlap int) *Splitter {
	if overlap >= size {
		overlap = 0
	}
	return &Splitter{Size: size, Overlap: overlap, Separators: defaultSeparators}
}

// Split returns the chunks of text in order.
func (s *Splitter) Split(text string) []string {
	if runeLen(text) <= s.Size {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}
	seps := s.Separators
	if len(seps) == 0 {
		seps = defaultSeparators
	}
	return s.split(text, seps)
}

func (s *Splitter) split(text string, seps []string) []string {
	sep := ""
	var rest []string
	for i, c := range seps {
		if c == "" || strings.Contains(text, c) {
			sep = c
			rest = seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, fits []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) <= s.Size {
			fits = append(fits, p)
			continue
		}
		if len(fits) > 0 {
			chunks = append(chunks, s.merge(fits, sep)...)
			fits = nil
		}
		chunks = append(chunks, s.split(p, rest)...)
	}
	if len(fits) > 0 {
		chunks = append(chunks, s.merge(fits, sep)...)
	}
	return chunks
}

// merge packs pieces into chunks of at most Size characters, carrying up
// to Overlap characters of trailing pieces into the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		docs  []string
		cur   []string
		total int
	)
	joinCost := func() int {
		if len(cur) > 0 {
			return sepLen
		}
		return 0
	}

	for _, p := range pieces {
		l := runeLen(p)
		if len(cur) > 0 && total+joinCost()+l > s.Size {
			if doc := strings.TrimSpace(strings.Join(cur, sep)); doc != "" {
				docs = append(docs, doc)
			}
			for len(cur) > 0 && (total > s.Overlap || total+joinCost()+l > s.Size) {
				total -= runeLen(cur[0])
				if len(cur) > 1 {
					total -= sepLen
				}
				cur = cur[1:]
			}
		}
		total += joinCost() + l
		cur = append(cur, p)
	}
	if doc := strings.TrimSpace(strings.Join(cur, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
