package digest

import (
	"fmt"
	"strings"

	"article-digest/internal/domain/entity"
)

// DefaultMaxChunkWords is the chunk capacity used when none is configured.
const DefaultMaxChunkWords = 300

// Chunker packs whole sentences into chunks of at most MaxWords words.
type Chunker struct {
	MaxWords int
}

// NewChunker returns a Chunker with the given capacity.
func NewChunker(maxWords int) (*Chunker, error) {
	if maxWords < 1 {
		return nil, fmt.Errorf("max chunk words must be positive, got %d", maxWords)
	}
	return &Chunker{MaxWords: maxWords}, nil
}

// SplitSentences groups the whitespace separated words of text into
// sentences. A sentence ends after a word whose last character is '.', '?'
// or '!', so punctuation inside a word ("3.14", "example.com") never splits
// it. Words are joined by single spaces; SplitSentences("") returns nil.
func SplitSentences(text string) []string {
	groups := sentenceWords(text)
	if len(groups) == 0 {
		return nil
	}
	sentences := make([]string, len(groups))
	for i, words := range groups {
		sentences[i] = strings.Join(words, " ")
	}
	return sentences
}

// sentenceWords returns the words of text grouped by sentence. Flattening
// the result gives exactly strings.Fields(text).
func sentenceWords(text string) [][]string {
	var (
		groups  [][]string
		current []string
	)
	for _, word := range strings.Fields(text) {
		current = append(current, word)
		if endsSentence(word) {
			groups = append(groups, current)
			current = nil
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func endsSentence(word string) bool {
	switch word[len(word)-1] {
	case '.', '?', '!':
		return true
	}
	return false
}

// Split divides article into chunks in document order.
//
// A sentence joins the current chunk when the combined word count stays
// within MaxWords, otherwise it opens a new chunk. Sentences are never
// split, so a sentence longer than MaxWords becomes an oversized chunk of
// its own. Chunk text is the chunk's words joined by single spaces, so the
// chunk words of an article are exactly strings.Fields(article), in order.
// An article without words yields exactly one empty chunk.
func (c *Chunker) Split(article string) []entity.Chunk {
	var (
		groups  [][]string
		current []string
	)

	for _, words := range sentenceWords(article) {
		if len(current) > 0 && len(current)+len(words) > c.MaxWords {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, words...)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	if len(groups) == 0 {
		return []entity.Chunk{{Index: 0, Text: "", Words: 0}}
	}

	chunks := make([]entity.Chunk, len(groups))
	for i, words := range groups {
		chunks[i] = entity.Chunk{
			Index: i,
			Text:  strings.Join(words, " "),
			Words: len(words),
		}
	}
	return chunks
}
