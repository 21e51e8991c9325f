// Package feedback scores a free-text submission against a model answer
// with rule-based heuristics over part-of-speech tagged text, and renders
// a Korean summary for the student.
package feedback

import (
	"strings"
	"unicode"
)

// Token is one word with its Penn Treebank part-of-speech tag.
type Token struct {
	Text string
	Tag  string
}

type Sentence struct {
	Text   string
	Tokens []Token
}

// Doc is a parsed text. The checkers operate on Doc only, so they can be
// tested with synthetic tagged input independent of the tagging toolkit.
type Doc struct {
	Sentences []Sentence
}

// Tokens returns all tokens in document order.
func (d Doc) Tokens() []Token {
	var out []Token
	for _, s := range d.Sentences {
		out = append(out, s.Tokens...)
	}
	return out
}

// Words returns the lowercased alphabetic tokens of the document.
func (d Doc) Words() []string {
	var out []string
	for _, t := range d.Tokens() {
		if isWord(t.Text) {
			out = append(out, strings.ToLower(t.Text))
		}
	}
	return out
}

// Parser turns raw text into a tagged Doc.
type Parser interface {
	Parse(text string) (Doc, error)
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isVerbTag(tag string) bool {
	return strings.HasPrefix(tag, "VB")
}

func isNounTag(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

func isAdjTag(tag string) bool {
	return strings.HasPrefix(tag, "JJ")
}
