package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

// Sender отправляет сообщения в Telegram. *tgbotapi.BotAPI удовлетворяет интерфейсу.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram шлёт служебные уведомления в один чат.
type Telegram struct {
	bot    Sender
	chatID int64
	log    zerolog.Logger
}

// NewTelegram создаёт уведомитель.
func NewTelegram(bot Sender, chatID int64, logger zerolog.Logger) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, log: logger}
}

// PlanReady сообщает, что для компании сгенерирован план.
func (t *Telegram) PlanReady(ctx context.Context, company domain.Company, plan domain.WeeklyPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatPlanReady(company, plan))
	msg.DisableWebPagePreview = true
	start := time.Now()
	_, err := t.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram", "send_message", "plan_ready", start, err)
	if err != nil {
		return fmt.Errorf("отправка уведомления: %w", err)
	}
	t.log.Debug().Int64("plan_id", plan.ID).Msg("уведомление о плане отправлено")
	return nil
}

// FormatPlanReady собирает текст уведомления.
func FormatPlanReady(company domain.Company, plan domain.WeeklyPlan) string {
	platforms := make([]string, 0, 4)
	seen := map[domain.Platform]struct{}{}
	for _, p := range plan.Posts {
		if _, ok := seen[p.Platform]; ok {
			continue
		}
		seen[p.Platform] = struct{}{}
		platforms = append(platforms, string(p.Platform))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "План #%d для %s готов\n", plan.ID, company.Name)
	fmt.Fprintf(&b, "Неделя с %s, постов: %d\n", plan.WeekStart.Format("2006-01-02"), len(plan.Posts))
	if len(platforms) > 0 {
		fmt.Fprintf(&b, "Платформы: %s", strings.Join(platforms, ", "))
	}
	return strings.TrimSpace(b.String())
}
