package domain

import "testing"

func TestSelectQuestionsExactMatch(t *testing.T) {
	catalog := []Question{
		{Title: "Two Sum", Topic: "Arrays", Difficulty: "easy"},
		{Title: "Rotate Array", Topic: "Arrays", Difficulty: "medium"},
		{Title: "Valid Parentheses", Topic: "Stacks", Difficulty: "easy"},
	}

	selected := SelectQuestions(catalog, "arrays", "EASY")
	if len(selected) != 1 || selected[0].Title != "Two Sum" {
		t.Fatalf("expected exact match on Two Sum, got %+v", selected)
	}
}

func TestSelectQuestionsRelaxesToTopic(t *testing.T) {
	catalog := []Question{
		{Title: "Two Sum", Topic: "Arrays", Difficulty: "easy"},
		{Title: "Rotate Array", Topic: "Arrays", Difficulty: "medium"},
	}

	selected := SelectQuestions(catalog, "Arrays", "hard")
	if len(selected) != 2 {
		t.Fatalf("expected topic-only fallback with 2 questions, got %d", len(selected))
	}
	if selected[0].Title != "Two Sum" || selected[1].Title != "Rotate Array" {
		t.Fatalf("expected catalog order preserved, got %+v", selected)
	}
}

func TestSelectQuestionsNoMatch(t *testing.T) {
	catalog := []Question{
		{Title: "Two Sum", Topic: "Arrays", Difficulty: "easy"},
	}

	if selected := SelectQuestions(catalog, "Graphs", "easy"); len(selected) != 0 {
		t.Fatalf("expected no questions, got %+v", selected)
	}
}
