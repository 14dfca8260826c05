package competitor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"smm-planner/internal/adapters/htmltext"
	"smm-planner/internal/domain"
)

// Заглушки вместо реального анализа контента конкурента.
const (
	CadenceGuess = "weekly"
	FetchFailed  = "fetch_failed"
)

// TopicGuess содержит фиксированный список предполагаемых тем.
var TopicGuess = []string{"pricing", "coverage", "support"}

// Analyzer строит облегчённые отчёты по конкурентам.
type Analyzer struct {
	fetcher domain.Fetcher
	log     zerolog.Logger
}

// NewAnalyzer создаёт анализатор.
func NewAnalyzer(fetcher domain.Fetcher, logger zerolog.Logger) *Analyzer {
	return &Analyzer{fetcher: fetcher, log: logger}
}

// Analyze обходит конкурентов по одному в порядке входа. Ошибка одного
// конкурента не прерывает обработку остальных.
func (a *Analyzer) Analyze(ctx context.Context, competitors []domain.Competitor) []domain.CompetitorAnalysis {
	out := make([]domain.CompetitorAnalysis, 0, len(competitors))
	for _, c := range competitors {
		out = append(out, a.analyzeOne(ctx, c))
	}
	return out
}

func (a *Analyzer) analyzeOne(ctx context.Context, c domain.Competitor) domain.CompetitorAnalysis {
	failed := domain.CompetitorAnalysis{ID: c.ID, URL: c.URL, Error: FetchFailed}

	resp, err := a.fetcher.Get(ctx, c.URL, nil)
	if err != nil {
		a.log.Debug().Err(err).Str("url", c.URL).Msg("competitors: сайт недоступен")
		return failed
	}
	if !resp.OK() {
		a.log.Debug().Int("status", resp.Status).Str("url", c.URL).Msg("competitors: неуспешный статус")
		return failed
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return failed
	}
	return domain.CompetitorAnalysis{
		ID:           c.ID,
		URL:          c.URL,
		Title:        htmltext.Strip(doc.Find("title").First().Text()),
		CadenceGuess: CadenceGuess,
		TopicGuess:   append([]string(nil), TopicGuess...),
	}
}
