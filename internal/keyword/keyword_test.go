package keyword_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/rcliao/auto-memory/internal/keyword"
)

func TestExtract(t *testing.T) {
	stop := keyword.DefaultStopWords()

	cases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   \n\t", nil},
		{"short tokens dropped", "I am ok at it", nil},
		{"stop words dropped", "The cat and the dog were friends", []string{"cat", "dog", "friends"}},
		{"punctuation stripped", "Coffee, please! (hot)", []string{"coffee", "please", "hot"}},
		{"lowercased", "Bangkok BANGKOK bangkok Tokyo", []string{"bangkok", "tokyo"}},
		{"capped", "alpha bravo charlie delta echo foxtrot golf", []string{"alpha", "bravo", "charlie", "delta", "echo"}},
		{"thai kept", "เธอชอบกินขนมปัง และ กาแฟ", []string{"เธอชอบกินขนมปัง", "กาแฟ"}},
		{"digits kept", "room 101 floor 7", []string{"room", "101", "floor"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, keyword.Extract(tc.text, stop), tc.want)
		})
	}
}

func TestExtractProperties(t *testing.T) {
	stop := keyword.NewStopWords("Banana", "cherry")
	inputs := []string{
		"banana cherry apple",
		"BANANA split with Cherry on top of the apple pie and more words here",
		strings.Repeat("word ", 40),
		"a bb ccc dddd",
		"!!! ??? ...",
	}

	for _, in := range inputs {
		got := keyword.Extract(in, stop)
		gt.True(t, len(got) <= keyword.MaxKeywords)
		for _, kw := range got {
			gt.True(t, utf8.RuneCountInString(kw) > keyword.MaxDiscardLength)
			gt.False(t, stop.Contains(kw))
			gt.Equal(t, kw, strings.ToLower(kw))
		}
	}
}

func TestStopWordsCaseInsensitive(t *testing.T) {
	stop := keyword.NewStopWords("Hello", " ")
	gt.True(t, stop.Contains("HELLO"))
	gt.False(t, stop.Contains(""))
	gt.Equal(t, keyword.Extract("hello world", stop), []string{"world"})
}

func TestNormalize(t *testing.T) {
	stop := keyword.DefaultStopWords()

	gt.A(t, keyword.Normalize([]string{"a", "of", "the"}, stop)).Length(0)
	gt.Equal(t,
		keyword.Normalize([]string{"Coffee", "coffee!", "New York", "ab"}, stop),
		[]string{"coffee", "new", "york"},
	)
	gt.A(t, keyword.Normalize([]string{"one two three four five six seven"}, stop)).Length(keyword.MaxKeywords)
	gt.A(t, keyword.Normalize(nil, stop)).Length(0)
}
