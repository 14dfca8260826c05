package export

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

const contentType = "text/csv"

// EmptyCSV возвращается для плана без постов.
const EmptyCSV = "platform,scheduled_at,caption,hashtags\n"

// PostColumns перечисляет колонки выгрузки постов.
var PostColumns = []string{"id", "platform", "scheduled_at", "caption", "hashtags", "image_prompt", "status"}

// PostLister читает посты плана.
type PostLister interface {
	ListPosts(ctx context.Context, planID int64) ([]domain.Post, error)
}

// Service выгружает посты плана в CSV и кладёт файл в хранилище.
type Service struct {
	posts PostLister
	blobs domain.BlobStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewService создаёт сервис выгрузки. blobs может быть nil, тогда ExportPlan возвращает ошибку.
func NewService(posts PostLister, blobs domain.BlobStore, logger zerolog.Logger) *Service {
	return &Service{posts: posts, blobs: blobs, log: logger, now: time.Now}
}

// ExportPlan сохраняет CSV с постами плана и возвращает ключ объекта.
func (s *Service) ExportPlan(ctx context.Context, planID int64) (string, error) {
	if planID <= 0 {
		return "", fmt.Errorf("%w: plan_id обязателен", domain.ErrInvalidInput)
	}
	if s.blobs == nil {
		return "", errors.New("хранилище выгрузок не настроено")
	}
	posts, err := s.posts.ListPosts(ctx, planID)
	if err != nil {
		return "", fmt.Errorf("получение постов: %w", err)
	}
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, PostRow(p))
	}
	key := ObjectKey(planID, s.now())
	if err := s.blobs.Put(ctx, key, []byte(RenderCSV(PostColumns, rows)), contentType); err != nil {
		return "", fmt.Errorf("сохранение выгрузки: %w", err)
	}
	s.log.Info().Int64("plan_id", planID).Str("key", key).Int("rows", len(rows)).Msg("план выгружен")
	return key, nil
}

// ObjectKey строит путь объекта: exports/plan_{id}_{unix ms}.csv.
func ObjectKey(planID int64, at time.Time) string {
	return fmt.Sprintf("exports/plan_%d_%d.csv", planID, at.UnixMilli())
}

// PostRow раскладывает пост по колонкам PostColumns.
func PostRow(p domain.Post) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		string(p.Platform),
		p.ScheduledAt.UTC().Format(time.RFC3339),
		p.Caption,
		strings.Join(p.Hashtags, " "),
		p.ImagePrompt,
		string(p.Status),
	}
}

// RenderCSV собирает CSV: заголовок без кавычек, каждое значение в двойных
// кавычках с удвоением внутренних кавычек, строки через \n без завершающего
// перевода строки. Пустой набор строк даёт EmptyCSV.
func RenderCSV(header []string, rows [][]string) string {
	if len(rows) == 0 {
		return EmptyCSV
	}
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}
