package competitors

import (
	"context"
	"errors"
	"testing"

	"smm-planner/internal/domain"
)

type stubRepo struct {
	stored []domain.Competitor
}

func (s *stubRepo) AddCompetitors(_ context.Context, _ int64, items []domain.Competitor) (int, error) {
	s.stored = append(s.stored, items...)
	return len(items), nil
}
func (s *stubRepo) ListCompetitors(context.Context, int64) ([]domain.Competitor, error) {
	return s.stored, nil
}

type echoAnalyzer struct{}

func (echoAnalyzer) Analyze(_ context.Context, items []domain.Competitor) []domain.CompetitorAnalysis {
	out := make([]domain.CompetitorAnalysis, 0, len(items))
	for _, c := range items {
		out = append(out, domain.CompetitorAnalysis{ID: c.ID, URL: c.URL})
	}
	return out
}

func TestAddSkipsEmptyURLs(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, echoAnalyzer{})

	n, err := svc.Add(context.Background(), 4, []domain.Competitor{{URL: " https://a.example "}, {Name: "no url"}, {URL: "https://b.example"}})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if n != 2 || repo.stored[0].URL != "https://a.example" || repo.stored[1].CompanyID != 4 {
		t.Fatalf("неожиданные записи: %+v", repo.stored)
	}
	if _, err := svc.Add(context.Background(), 4, []domain.Competitor{{Name: "x"}}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
	}
}

func TestListWithAnalysisKeepsOrder(t *testing.T) {
	repo := &stubRepo{stored: []domain.Competitor{{ID: 2, URL: "https://b"}, {ID: 1, URL: "https://a"}}}
	svc := NewService(repo, echoAnalyzer{})

	items, got, err := svc.ListWithAnalysis(context.Background(), 4)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 2 || len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("порядок нарушен: %+v", got)
	}
}
