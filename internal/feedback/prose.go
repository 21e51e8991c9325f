package feedback

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseParser tags text with the prose toolkit. Each sentence is re-run
// through the tagger with segmentation off so tokens stay grouped by
// sentence.
type ProseParser struct{}

func NewProseParser() *ProseParser { return &ProseParser{} }

func (p *ProseParser) Parse(text string) (Doc, error) {
	if strings.TrimSpace(text) == "" {
		return Doc{}, nil
	}
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return Doc{}, err
	}
	var out Doc
	for _, sent := range doc.Sentences() {
		sd, err := prose.NewDocument(sent.Text,
			prose.WithExtraction(false), prose.WithSegmentation(false))
		if err != nil {
			return Doc{}, err
		}
		s := Sentence{Text: sent.Text}
		for _, tok := range sd.Tokens() {
			s.Tokens = append(s.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
		}
		out.Sentences = append(out.Sentences, s)
	}
	return out, nil
}
