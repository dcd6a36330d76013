package memory

import (
	"context"
	"testing"
	"time"

	"livecoder-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(sampleCatalog()),
	}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func sampleCatalog() []domain.Question {
	return []domain.Question{
		{Title: "Two Sum", Topic: "Arrays", Difficulty: "easy"},
		{Title: "Reverse String", Topic: "Strings", Difficulty: "easy"},
	}
}
