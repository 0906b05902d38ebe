// Package chunker segments extracted document text into bounded-size pieces
// suitable for embedding. Splitting is word-aware: a chunk boundary never
// falls inside a word.
package chunker

import (
	"regexp"
	"strings"
)

const (
	DefaultTargetWords = 800
	DefaultMinWords    = 100
	DefaultMaxWords    = 1000
)

// Options control the chunk size bounds, counted in words.
type Options struct {
	TargetWords int
	MinWords    int
	MaxWords    int
}

// DefaultOptions returns the standard chunk sizing.
func DefaultOptions() Options {
	return Options{
		TargetWords: DefaultTargetWords,
		MinWords:    DefaultMinWords,
		MaxWords:    DefaultMaxWords,
	}
}

var (
	paragraphRe = regexp.MustCompile(`\n[ \t]*\n+`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*\s*`)
)

// unit is one indivisible piece of input text together with the separator
// that joins it to the previous unit when both land in the same chunk.
type unit struct {
	text string
	sep  string
}

// Split segments text into ordered chunks. Paragraphs are the preferred
// unit; a paragraph over MaxWords is re-split on sentence boundaries, and a
// single sentence over MaxWords falls back to hard word slicing. Units are
// accumulated greedily up to TargetWords, except that a buffer below
// MinWords keeps accumulating while input remains and would not overflow
// MaxWords. Empty input yields no chunks.
func Split(text string, opts Options) []string {
	opts = normalize(opts)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var units []unit
	for _, p := range splitParagraphs(trimmed) {
		if wordCount(p) <= opts.MaxWords {
			units = append(units, unit{text: p, sep: "\n\n"})
			continue
		}
		for _, s := range splitSentences(p) {
			if wordCount(s) <= opts.MaxWords {
				units = append(units, unit{text: s, sep: " "})
				continue
			}
			for _, piece := range hardSlice(s, opts.MaxWords) {
				units = append(units, unit{text: piece, sep: " "})
			}
		}
	}

	var chunks []string
	var buf strings.Builder
	bufWords := 0

	flush := func() {
		if bufWords > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufWords = 0
		}
	}

	for _, u := range units {
		w := wordCount(u.text)
		if bufWords > 0 && bufWords+w > opts.TargetWords &&
			(bufWords >= opts.MinWords || bufWords+w > opts.MaxWords) {
			flush()
		}
		if bufWords > 0 {
			buf.WriteString(u.sep)
		}
		buf.WriteString(u.text)
		bufWords += w
	}
	flush()

	return chunks
}

func normalize(opts Options) Options {
	if opts.TargetWords <= 0 {
		opts.TargetWords = DefaultTargetWords
	}
	if opts.MinWords <= 0 {
		opts.MinWords = DefaultMinWords
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}
	if opts.MinWords > opts.TargetWords {
		opts.MinWords = opts.TargetWords
	}
	if opts.MaxWords < opts.TargetWords {
		opts.MaxWords = opts.TargetWords
	}
	return opts
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func splitSentences(paragraph string) []string {
	matches := sentenceRe.FindAllString(paragraph, -1)
	if len(matches) == 0 {
		return []string{paragraph}
	}

	consumed := 0
	sentences := make([]string, 0, len(matches)+1)
	for _, m := range matches {
		consumed += len(m)
		if s := strings.TrimSpace(m); s != "" {
			sentences = append(sentences, s)
		}
	}
	// Trailing text without terminal punctuation is kept as a final sentence.
	if consumed < len(paragraph) {
		if rest := strings.TrimSpace(paragraph[consumed:]); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

func hardSlice(sentence string, maxWords int) []string {
	words := strings.Fields(sentence)
	var pieces []string
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
	}
	return pieces
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
