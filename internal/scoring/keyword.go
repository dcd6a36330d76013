package scoring

import (
	"strings"

	"livecoder-service/internal/domain"
)

// maxScore caps every graded submission.
const maxScore = 10

// KeywordScorer grades submissions with a deterministic keyword heuristic:
// fixed point values for structural signals in the code, correlated with the
// question title, capped at maxScore. It is a placeholder policy; anything
// pure, deterministic and bounded to [0, maxScore] can replace it.
type KeywordScorer struct{}

func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

// Score grades code against a question. A submission identical to the
// question's starter template for the language scores zero.
func (s *KeywordScorer) Score(q domain.Question, code, language string) int {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return 0
	}
	if template, ok := q.Templates[language]; ok && trimmed == strings.TrimSpace(template) {
		return 0
	}

	score := 0
	if len(trimmed) > 10 {
		score += 2
	}
	if hasEntryPoint(code) {
		score += 2
	}
	if hasOutput(code) {
		score++
	}

	title := strings.ToLower(q.Title)
	if strings.Contains(title, "array") {
		if strings.Contains(code, "[]") || strings.Contains(code, "array") {
			score += 2
		}
	}
	if strings.Contains(title, "sum") {
		if strings.Contains(code, "+") || strings.Contains(code, "sum") {
			score += 2
		}
	}
	if strings.Contains(title, "reverse") {
		if strings.Contains(code, "reverse") || strings.Contains(code, "for") || strings.Contains(code, "while") {
			score += 2
		}
	}

	if strings.Contains(code, "for") || strings.Contains(code, "while") {
		score++
	}
	if strings.Contains(code, "if") || strings.Contains(code, "else") {
		score++
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

func hasEntryPoint(code string) bool {
	markers := []string{"public class", "public static", "def ", "func ", "function", "int main"}
	for _, m := range markers {
		if strings.Contains(code, m) {
			return true
		}
	}
	return false
}

func hasOutput(code string) bool {
	markers := []string{"System.out.println", "print", "console.log", "fmt.P", "printf", "puts"}
	for _, m := range markers {
		if strings.Contains(code, m) {
			return true
		}
	}
	return false
}
