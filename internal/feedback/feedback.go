package feedback

import (
	"fmt"
	"math"
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Report is the scorer's output for one submission.
type Report struct {
	OverallScore       int           `json:"overall_score"`
	GrammarFeedback    []GrammarItem `json:"grammar_feedback"`
	ContentFeedback    []Comment     `json:"content_feedback"`
	VocabularyFeedback []Comment     `json:"vocabulary_feedback"`
	Suggestions        []string      `json:"suggestions"`
	PositivePoints     []string      `json:"positive_points"`
	KoreanSummary      string        `json:"korean_summary"`
}

type Generator struct {
	parser Parser
}

func NewGenerator(parser Parser) *Generator {
	return &Generator{parser: parser}
}

// Generate scores studentAnswer against modelAnswer. The problem type
// selects which checker families run; unknown types take the general
// content path. An empty submission is not a checker fault and yields the
// baseline report.
func (g *Generator) Generate(studentAnswer, modelAnswer, problemType string) Report {
	report := emptyReport()
	if strings.TrimSpace(studentAnswer) == "" {
		report.OverallScore = 100
		report.KoreanSummary = renderSummary(report)
		return report
	}

	doc, err := g.parser.Parse(studentAnswer)
	if err != nil {
		report.OverallScore = 100
		report.KoreanSummary = renderSummary(report)
		return report
	}

	switch canonicalType(problemType) {
	case "writing":
		report.GrammarFeedback = append(report.GrammarFeedback, checkSubjectVerbAgreement(doc)...)
		report.GrammarFeedback = append(report.GrammarFeedback, checkArticleOmission(doc)...)
		report.ContentFeedback = append(report.ContentFeedback, checkSentenceStructure(doc)...)
		report.VocabularyFeedback = append(report.VocabularyFeedback, checkLexicalDiversity(doc)...)
		report.VocabularyFeedback = append(report.VocabularyFeedback, checkWordLevel(doc)...)
	case "grammar":
		report.GrammarFeedback = append(report.GrammarFeedback, checkSubjectVerbAgreement(doc)...)
		report.GrammarFeedback = append(report.GrammarFeedback, checkArticleOmission(doc)...)
		report.GrammarFeedback = append(report.GrammarFeedback, checkTenseConsistency(doc)...)
	case "vocabulary":
		if missing := missingWords(studentAnswer, modelAnswer); len(missing) > 0 {
			report.VocabularyFeedback = append(report.VocabularyFeedback, Comment{
				Point:      "누락된 주요 어휘",
				Details:    "모범 답안의 주요 단어가 빠져 있습니다.",
				Words:      missing,
				Suggestion: "다음 단어들을 포함하면 좋았을 것 같습니다.",
			})
		}
		report.VocabularyFeedback = append(report.VocabularyFeedback, checkWordChoice(doc)...)
	default:
		report.ContentFeedback = append(report.ContentFeedback, g.contentChecks(studentAnswer, modelAnswer, doc)...)
	}

	report.PositivePoints = g.positivePoints(doc, studentAnswer, modelAnswer)
	report.OverallScore = overallScore(report)
	report.KoreanSummary = renderSummary(report)
	return report
}

// contentChecks compares tone and sentence composition against the model
// answer.
func (g *Generator) contentChecks(studentAnswer, modelAnswer string, studentDoc Doc) []Comment {
	var items []Comment

	if sentimentMismatch(studentAnswer, modelAnswer) {
		items = append(items, Comment{
			Point:      "글의 어조",
			Details:    "답안의 전반적인 어조가 모범 답안과 다릅니다.",
			Suggestion: "글의 목적에 맞는 어조를 사용하세요.",
		})
	}

	modelDoc, err := g.parser.Parse(modelAnswer)
	if err == nil && len(modelDoc.Sentences) != len(studentDoc.Sentences) {
		items = append(items, Comment{
			Point:      "문장 구성",
			Details:    fmt.Sprintf("모범 답안은 %d개의 문장으로 구성되어 있습니다.", len(modelDoc.Sentences)),
			Suggestion: "적절한 문장 분할을 고려해보세요.",
		})
	}
	return items
}

// sentimentMismatch reports whether the two texts lean opposite ways.
// Compound scores within 0.05 of zero are treated as neutral.
func sentimentMismatch(a, b string) bool {
	return polaritySign(a)*polaritySign(b) == -1
}

func polaritySign(text string) int {
	compound := sentitext.PolarityScore(sentitext.Parse(text, lexicon.DefaultLexicon)).Compound
	switch {
	case compound > 0.05:
		return 1
	case compound < -0.05:
		return -1
	default:
		return 0
	}
}

func (g *Generator) positivePoints(doc Doc, studentAnswer, modelAnswer string) []string {
	var points []string

	if len(doc.Sentences) > 0 {
		ok := true
		for _, s := range doc.Sentences {
			n := len(strings.Fields(s.Text))
			if n < 10 || n > 25 {
				ok = false
				break
			}
		}
		if ok {
			points = append(points, "문장의 길이가 적절하여 읽기 쉽습니다.")
		}
	}

	if adv := longWords(doc); len(adv) > 0 {
		if len(adv) > 3 {
			adv = adv[:3]
		}
		points = append(points, fmt.Sprintf("'%s' 등의 고급 어휘를 적절히 사용했습니다.", strings.Join(adv, ", ")))
	}

	grammarErrors := len(checkSubjectVerbAgreement(doc)) + len(checkArticleOmission(doc))
	if grammarErrors <= 2 {
		points = append(points, "전반적으로 문법이 정확합니다.")
	}

	switch sim := cosineSimilarity(studentAnswer, modelAnswer); {
	case sim > 0.8:
		points = append(points, "모범 답안의 핵심 내용을 잘 반영했습니다.")
	case sim > 0.6:
		points = append(points, "주요 내용을 적절히 포함하고 있습니다.")
	}
	return points
}

// cosineSimilarity compares term-frequency vectors of the two texts.
func cosineSimilarity(a, b string) float64 {
	fa, fb := termFreq(a), termFreq(b)
	if len(fa) == 0 || len(fb) == 0 {
		return 0
	}
	var dot, na, nb float64
	for w, x := range fa {
		na += x * x
		if y, ok := fb[w]; ok {
			dot += x * y
		}
	}
	for _, y := range fb {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func termFreq(text string) map[string]float64 {
	freq := map[string]float64{}
	for _, w := range fieldsNormalized(text) {
		freq[w]++
	}
	return freq
}

func overallScore(r Report) int {
	score := 100
	score -= min(len(r.GrammarFeedback)*5, 30)
	score -= min(len(r.VocabularyFeedback)*5, 20)
	score -= min(len(r.ContentFeedback)*5, 30)
	score += min(len(r.PositivePoints)*2, 10)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func renderSummary(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 종합 점수: %d점", r.OverallScore)

	if len(r.PositivePoints) > 0 {
		b.WriteString("\n\n💪 잘한 점:")
		for _, p := range r.PositivePoints {
			fmt.Fprintf(&b, "\n- %s", p)
		}
	}
	if len(r.GrammarFeedback) > 0 {
		b.WriteString("\n\n📝 문법 관련 의견:")
		items := r.GrammarFeedback
		if len(items) > 3 {
			items = items[:3]
		}
		for _, it := range items {
			fmt.Fprintf(&b, "\n- %s", it.Error)
			if it.Suggestion != "" {
				fmt.Fprintf(&b, "\n  → 제안: %s", it.Suggestion)
			}
		}
	}
	if len(r.VocabularyFeedback) > 0 {
		b.WriteString("\n\n📚 어휘 관련 의견:")
		for _, it := range r.VocabularyFeedback {
			fmt.Fprintf(&b, "\n- %s", it.Point)
			if it.Suggestion != "" {
				fmt.Fprintf(&b, "\n  → 제안: %s", it.Suggestion)
			}
		}
	}
	if len(r.ContentFeedback) > 0 {
		b.WriteString("\n\n💡 내용 관련 의견:")
		for _, it := range r.ContentFeedback {
			fmt.Fprintf(&b, "\n- %s", it.Point)
			if it.Suggestion != "" {
				fmt.Fprintf(&b, "\n  → 제안: %s", it.Suggestion)
			}
		}
	}
	if len(r.Suggestions) > 0 {
		b.WriteString("\n\n✨ 향상을 위한 제안:")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&b, "\n- %s", s)
		}
	}
	return b.String()
}

func emptyReport() Report {
	return Report{
		GrammarFeedback:    []GrammarItem{},
		ContentFeedback:    []Comment{},
		VocabularyFeedback: []Comment{},
		Suggestions:        []string{},
		PositivePoints:     []string{},
	}
}

func canonicalType(t string) string {
	switch strings.TrimSpace(strings.ToLower(t)) {
	case "writing", "영작문":
		return "writing"
	case "grammar", "문법":
		return "grammar"
	case "vocabulary", "어휘":
		return "vocabulary"
	default:
		return "general"
	}
}
