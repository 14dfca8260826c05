package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func testPlan() domain.WeeklyPlan {
	return domain.WeeklyPlan{
		ID:        12,
		WeekStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Posts: []domain.Post{
			{Platform: domain.PlatformFacebook},
			{Platform: domain.PlatformX},
			{Platform: domain.PlatformFacebook},
		},
	}
}

func TestFormatPlanReady(t *testing.T) {
	got := FormatPlanReady(domain.Company{Name: "Acme"}, testPlan())
	want := "План #12 для Acme готов\nНеделя с 2024-01-01, постов: 3\nПлатформы: facebook, x"
	if got != want {
		t.Fatalf("ожидали %q, получили %q", want, got)
	}
}

func TestPlanReadySendsToChat(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegram(sender, 777, zerolog.Nop())
	if err := n.PlanReady(context.Background(), domain.Company{Name: "Acme"}, testPlan()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("ожидали одно сообщение")
	}
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok || msg.ChatID != 777 {
		t.Fatalf("сообщение отправлено не в тот чат: %+v", sender.sent[0])
	}

	sender.err = errors.New("bot blocked")
	if err := n.PlanReady(context.Background(), domain.Company{}, testPlan()); err == nil {
		t.Fatalf("ожидали ошибку отправки")
	}
}
