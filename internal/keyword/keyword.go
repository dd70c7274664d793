// Package keyword turns free text into a small set of salient tokens.
package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxKeywords caps the number of tokens returned by Extract.
	MaxKeywords = 5
	// MaxDiscardLength is the longest token length, in runes, that is
	// discarded.
	MaxDiscardLength = 2
)

// StopWords is a case-insensitive set of tokens to ignore.
type StopWords map[string]struct{}

// NewStopWords builds a set from words, lowercasing each.
func NewStopWords(words ...string) StopWords {
	s := make(StopWords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether w is a stop word.
func (s StopWords) Contains(w string) bool {
	_, ok := s[strings.ToLower(w)]
	return ok
}

var defaultWords = []string{
	// Thai
	"และ", "หรือ", "แต่", "ของ", "ที่", "ใน", "บน", "กับ", "เป็น", "ได้",
	"มี", "ให้", "ไป", "มา", "นะ", "ครับ", "ค่ะ",
	// English
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"with", "by", "is", "are", "was", "were", "be", "been",
}

// DefaultStopWords returns the built-in Thai and English stop words.
func DefaultStopWords() StopWords {
	return NewStopWords(defaultWords...)
}

// Extract returns up to MaxKeywords lowercase tokens from text in order of
// first occurrence. Punctuation is stripped; letters of any script, their
// combining marks, digits and underscores are kept.
func Extract(text string, stop StopWords) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return Normalize([]string{text}, stop)
}

// Normalize applies the Extract rules to caller supplied keywords: each is
// cleaned, split, lowercased and filtered by length and stop words, then the
// result is deduplicated and capped at MaxKeywords.
func Normalize(words []string, stop StopWords) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, w := range words {
		for _, token := range strings.Fields(clean(w)) {
			token = strings.ToLower(token)
			if utf8.RuneCountInString(token) <= MaxDiscardLength {
				continue
			}
			if stop.Contains(token) || seen[token] {
				continue
			}
			seen[token] = true
			keywords = append(keywords, token)
			if len(keywords) == MaxKeywords {
				return keywords
			}
		}
	}
	return keywords
}

func clean(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsDigit(r), r == '_':
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, text)
}
