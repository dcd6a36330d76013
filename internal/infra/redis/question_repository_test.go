package redis

import (
	"context"
	"testing"
	"time"

	"livecoder-service/internal/domain"
	"livecoder-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog()),
	}
	repo := NewQuestionRepository(client, loader, time.Minute)

	catalog, err := repo.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(catalog))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("questions:catalog") {
		t.Fatalf("expected catalog cached in redis")
	}

	// Second call should hit the redis cache, loader not incremented.
	again, err := repo.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(again) != 2 || again[0].Title != catalog[0].Title {
		t.Fatalf("cached catalog mismatch: %+v", again)
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
		{Title: "Two Sum", Topic: "Arrays", Difficulty: "easy", Templates: map[string]string{"java": "public class Main {}"}},
		{Title: "Reverse String", Topic: "Strings", Difficulty: "easy"},
	}
}
