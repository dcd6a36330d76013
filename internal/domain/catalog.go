package domain

import "strings"

// SelectQuestions filters the catalog for an exact case-insensitive match on
// both topic and difficulty. When that yields nothing it relaxes to a
// topic-only match. Catalog order is preserved; an empty result means the
// challenge cannot start.
func SelectQuestions(catalog []Question, topic, difficulty string) []Question {
	selected := filterQuestions(catalog, topic, difficulty)
	if len(selected) == 0 {
		selected = filterQuestions(catalog, topic, "")
	}
	return selected
}

func filterQuestions(catalog []Question, topic, difficulty string) []Question {
	var out []Question
	for _, q := range catalog {
		if !strings.EqualFold(q.Topic, topic) {
			continue
		}
		if difficulty != "" && !strings.EqualFold(q.Difficulty, difficulty) {
			continue
		}
		out = append(out, q)
	}
	return out
}
