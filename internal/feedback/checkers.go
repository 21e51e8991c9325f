package feedback

import (
	"fmt"
	"sort"
	"strings"
)

// GrammarItem is a flagged grammar issue with a suggested fix.
type GrammarItem struct {
	Error       string `json:"error"`
	Context     string `json:"context"`
	Suggestion  string `json:"suggestion,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Comment is a vocabulary or content observation.
type Comment struct {
	Point      string   `json:"point"`
	Details    string   `json:"details"`
	Words      []string `json:"words,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

var thirdPersonSubjects = map[string]bool{"he": true, "she": true, "it": true}

// checkSubjectVerbAgreement flags third-person singular pronoun subjects
// followed by a base-form present verb within the same sentence.
func checkSubjectVerbAgreement(doc Doc) []GrammarItem {
	var items []GrammarItem
	for _, sent := range doc.Sentences {
		subject := ""
		for _, tok := range sent.Tokens {
			low := strings.ToLower(tok.Text)
			if subject == "" && thirdPersonSubjects[low] {
				subject = tok.Text
				continue
			}
			if subject != "" && tok.Tag == "VBP" {
				items = append(items, GrammarItem{
					Error:       "주어-동사 불일치",
					Context:     fmt.Sprintf("%s %s", subject, tok.Text),
					Suggestion:  fmt.Sprintf("%s %ss", subject, tok.Text),
					Explanation: "3인칭 단수 주어는 동사에 -s를 붙여야 합니다.",
				})
				break
			}
		}
	}
	return items
}

// checkArticleOmission flags a singular noun with no determiner or
// possessive in front of it. Looking back skips adjectives and adverbs so
// "a very old book" still counts as covered. A noun directly followed by
// another noun is treated as part of a compound and skipped.
func checkArticleOmission(doc Doc) []GrammarItem {
	var items []GrammarItem
	for _, sent := range doc.Sentences {
		toks := sent.Tokens
		for i, tok := range toks {
			if tok.Tag != "NN" {
				continue
			}
			if i+1 < len(toks) && isNounTag(toks[i+1].Tag) {
				continue
			}
			covered := false
			for j := i - 1; j >= 0; j-- {
				if isAdjTag(toks[j].Tag) || toks[j].Tag == "RB" {
					continue
				}
				if toks[j].Tag == "DT" || toks[j].Tag == "PRP$" {
					covered = true
				}
				break
			}
			if !covered {
				items = append(items, GrammarItem{
					Error:       "관사 누락",
					Context:     tok.Text,
					Suggestion:  fmt.Sprintf("a/the %s", tok.Text),
					Explanation: "가산명사 단수형 앞에는 관사가 필요합니다.",
				})
			}
		}
	}
	return items
}

// checkTenseConsistency flags a mix of past and present verb forms.
func checkTenseConsistency(doc Doc) []GrammarItem {
	past, present := false, false
	for _, tok := range doc.Tokens() {
		switch tok.Tag {
		case "VBD", "VBN":
			past = true
		case "VBZ", "VBP":
			present = true
		}
	}
	if past && present {
		return []GrammarItem{{
			Error:       "시제 일관성",
			Context:     "과거형과 현재형이 섞여 있습니다.",
			Suggestion:  "글의 문맥에 맞는 일관된 시제를 사용하세요.",
			Explanation: "문장 내에서 시제가 일관되지 않습니다.",
		}}
	}
	return nil
}

// missingWords returns the model answer's words the student never used,
// lowercased, punctuation trimmed, sorted.
func missingWords(student, model string) []string {
	used := map[string]bool{}
	for _, w := range fieldsNormalized(student) {
		used[w] = true
	}
	seen := map[string]bool{}
	var missing []string
	for _, w := range fieldsNormalized(model) {
		if !used[w] && !seen[w] {
			seen[w] = true
			missing = append(missing, w)
		}
	}
	sort.Strings(missing)
	return missing
}

func fieldsNormalized(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		w := strings.ToLower(strings.Trim(f, ".,!?;:'\"()"))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func checkLexicalDiversity(doc Doc) []Comment {
	words := doc.Words()
	if len(words) == 0 {
		return nil
	}
	unique := map[string]bool{}
	for _, w := range words {
		unique[w] = true
	}
	if float64(len(unique))/float64(len(words)) < 0.4 {
		return []Comment{{
			Point:      "어휘 다양성",
			Details:    "같은 단어가 자주 반복되고 있습니다.",
			Suggestion: "유의어를 활용하여 더 다양한 표현을 시도해보세요.",
		}}
	}
	return nil
}

// longWords returns alphabetic tokens longer than 8 characters, in order.
func longWords(doc Doc) []string {
	var out []string
	for _, t := range doc.Tokens() {
		if isWord(t.Text) && len([]rune(t.Text)) > 8 {
			out = append(out, t.Text)
		}
	}
	return out
}

func checkWordLevel(doc Doc) []Comment {
	words := doc.Words()
	if len(words) == 0 {
		return nil
	}
	if float64(len(longWords(doc)))/float64(len(words)) < 0.1 {
		return []Comment{{
			Point:      "어휘 수준",
			Details:    "기초적인 어휘가 주로 사용되었습니다.",
			Suggestion: "상황에 맞는 더 정확하고 세련된 어휘를 사용해보세요.",
		}}
	}
	return nil
}

var basicVerbs = map[string]string{
	"be": "be", "am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be",
	"have": "have", "has": "have", "had": "have", "having": "have",
	"do": "do", "does": "do", "did": "do", "done": "do", "doing": "do",
	"make": "make", "makes": "make", "made": "make", "making": "make",
	"get": "get", "gets": "get", "got": "get", "gotten": "get", "getting": "get",
	"go": "go", "goes": "go", "went": "go", "gone": "go", "going": "go",
	"take": "take", "takes": "take", "took": "take", "taken": "take", "taking": "take",
	"come": "come", "comes": "come", "came": "come", "coming": "come",
	"see": "see", "sees": "see", "saw": "see", "seen": "see", "seeing": "see",
	"know": "know", "knows": "know", "knew": "know", "known": "know", "knowing": "know",
}

func checkWordChoice(doc Doc) []Comment {
	var items []Comment

	basic, total := 0, 0
	for _, tok := range doc.Tokens() {
		if !isVerbTag(tok.Tag) {
			continue
		}
		total++
		if _, ok := basicVerbs[strings.ToLower(tok.Text)]; ok {
			basic++
		}
	}
	if total > 0 && float64(basic)/float64(total) > 0.6 {
		items = append(items, Comment{
			Point:      "동사 선택",
			Details:    "기초적인 동사가 많이 사용되었습니다.",
			Suggestion: "더 구체적이고 상황에 맞는 동사를 사용해보세요.",
		})
	}

	toks := doc.Tokens()
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].Tag == "JJ" && toks[i+1].Tag == "JJ" {
			items = append(items, Comment{
				Point:      "형용사 중복",
				Details:    fmt.Sprintf("'%s %s'와 같이 형용사가 연속으로 사용되었습니다.", toks[i].Text, toks[i+1].Text),
				Suggestion: "더 자연스러운 표현으로 수정해보세요.",
			})
		}
	}
	return items
}

// checkSentenceStructure flags overly long sentences and repetitive
// sentence openings. Opening repetition needs at least two sentences to
// mean anything.
func checkSentenceStructure(doc Doc) []Comment {
	var items []Comment
	if len(doc.Sentences) == 0 {
		return nil
	}

	total := 0
	for _, s := range doc.Sentences {
		total += len(s.Tokens)
	}
	if float64(total)/float64(len(doc.Sentences)) > 30 {
		items = append(items, Comment{
			Point:      "문장 길이",
			Details:    "문장이 너무 길어 이해하기 어려울 수 있습니다.",
			Suggestion: "긴 문장을 여러 개의 짧은 문장으로 나누어 보세요.",
		})
	}

	if len(doc.Sentences) >= 2 {
		starts := map[string]bool{}
		for _, s := range doc.Sentences {
			if len(s.Tokens) > 0 {
				starts[s.Tokens[0].Tag] = true
			}
		}
		if len(starts) < 2 {
			items = append(items, Comment{
				Point:      "문장 구조 다양성",
				Details:    "비슷한 구조의 문장이 반복됩니다.",
				Suggestion: "다양한 문장 구조를 사용하여 글의 흐름을 개선해보세요.",
			})
		}
	}
	return items
}
