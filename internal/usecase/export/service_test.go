package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

type stubPosts struct {
	posts []domain.Post
}

func (s stubPosts) ListPosts(context.Context, int64) ([]domain.Post, error) { return s.posts, nil }

type memBlobs struct {
	key         string
	data        string
	contentType string
	err         error
}

func (m *memBlobs) Put(_ context.Context, key string, data []byte, ct string) error {
	if m.err != nil {
		return m.err
	}
	m.key, m.data, m.contentType = key, string(data), ct
	return nil
}

func TestRenderCSVQuotesEveryValue(t *testing.T) {
	got := RenderCSV([]string{"a", "b"}, [][]string{{`say "hi"`, "x,y"}, {"", "line\nbreak"}})
	want := "a,b\n\"say \"\"hi\"\"\",\"x,y\"\n\"\",\"line\nbreak\""
	if got != want {
		t.Fatalf("ожидали %q, получили %q", want, got)
	}
	if RenderCSV(PostColumns, nil) != EmptyCSV {
		t.Fatalf("пустая выгрузка должна содержать только заголовок по умолчанию")
	}
}

func TestExportPlan(t *testing.T) {
	posts := stubPosts{posts: []domain.Post{{
		ID:          9,
		Platform:    domain.PlatformX,
		ScheduledAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Caption:     "Fibre — fast\nCall",
		Hashtags:    []string{"#Vinet", "#fibre"},
		ImagePrompt: "tile",
		Status:      domain.PostStatusDraft,
	}}}
	blobs := &memBlobs{}
	svc := NewService(posts, blobs, zerolog.Nop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	key, err := svc.ExportPlan(context.Background(), 5)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if key != "exports/plan_5_1700000000123.csv" || blobs.key != key {
		t.Fatalf("неожиданный ключ: %s", key)
	}
	want := "id,platform,scheduled_at,caption,hashtags,image_prompt,status\n" +
		"\"9\",\"x\",\"2024-01-01T09:00:00Z\",\"Fibre — fast\nCall\",\"#Vinet #fibre\",\"tile\",\"draft\""
	if blobs.data != want {
		t.Fatalf("ожидали %q, получили %q", want, blobs.data)
	}
	if blobs.contentType != "text/csv" {
		t.Fatalf("неожиданный content type: %s", blobs.contentType)
	}
}

func TestExportPlanErrors(t *testing.T) {
	svc := NewService(stubPosts{}, &memBlobs{err: errors.New("bucket missing")}, zerolog.Nop())
	if _, err := svc.ExportPlan(context.Background(), 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
	}
	if _, err := svc.ExportPlan(context.Background(), 1); err == nil {
		t.Fatalf("ожидали ошибку хранилища")
	}
}

func TestExportPlanWithoutStore(t *testing.T) {
	svc := NewService(stubPosts{}, nil, zerolog.Nop())
	if _, err := svc.ExportPlan(context.Background(), 1); err == nil {
		t.Fatalf("без хранилища ожидали ошибку")
	}
}
