package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pepeeats/internal/domain"
	"pepeeats/internal/infra/metrics"
)

// MenuProvider vrací jídelníček pro zadané datum (keš + stažení).
type MenuProvider interface {
	MenuFor(ctx context.Context, date time.Time) ([]string, error)
}

// Service obsluhuje připomínkové úlohy: večerní rozeslání nabídky
// a ranní připomenutí objednaného jídla.
type Service struct {
	subscribers domain.SubscriberRepo
	settings    domain.SettingsRepo
	orders      domain.OrderRepo
	menu        MenuProvider
	notifier    domain.Notifier
	holidays    domain.HolidayChecker
	clock       domain.Clock
	window      Window
	targetPrice int
	pickRemark  RemarkFunc
	log         zerolog.Logger
}

// NewService vytváří službu připomínek.
func NewService(
	subscribers domain.SubscriberRepo,
	settings domain.SettingsRepo,
	orders domain.OrderRepo,
	menu MenuProvider,
	notifier domain.Notifier,
	holidays domain.HolidayChecker,
	clock domain.Clock,
	window Window,
	targetPrice int,
	pickRemark RemarkFunc,
	log zerolog.Logger,
) *Service {
	if pickRemark == nil {
		pickRemark = RandomRemark
	}
	return &Service{
		subscribers: subscribers,
		settings:    settings,
		orders:      orders,
		menu:        menu,
		notifier:    notifier,
		holidays:    holidays,
		clock:       clock,
		window:      window,
		targetPrice: targetPrice,
		pickRemark:  pickRemark,
		log:         log,
	}
}

// RunSummary shrnuje výsledek jednoho běhu úlohy. Plánovač dostává
// vždy 200, aby benigní no-op nespouštěl retry bouři.
type RunSummary struct {
	RunID   string
	Outcome string
	Sent    int
	Skipped int
}

// Run rozesílá připomínky na další objednávací den. Selhání jednotlivého
// odeslání smyčku nikdy nepřeruší.
func (s *Service) Run(ctx context.Context) (RunSummary, error) {
	started := time.Now()
	defer func() { metrics.ReminderRunSeconds.Observe(time.Since(started).Seconds()) }()

	summary := RunSummary{RunID: uuid.NewString()}
	runLog := s.log.With().Str("run_id", summary.RunID).Logger()

	now := s.clock.Now()
	if !IsReminderDay(now.Weekday()) {
		summary.Outcome = "not_a_reminder_day"
		runLog.Info().Str("weekday", now.Weekday().String()).Msg("reminder: dnes se nepřipomíná")
		return summary, nil
	}
	orderDate, ok := NextOrderDate(now)
	if !ok {
		summary.Outcome = "not_a_reminder_day"
		return summary, nil
	}
	if s.holidays.IsHoliday(orderDate) {
		summary.Outcome = "holiday"
		runLog.Info().Str("date", domain.DateKey(orderDate)).Msg("reminder: objednávaný den je svátek")
		return summary, nil
	}

	dishes, err := s.menu.MenuFor(ctx, orderDate)
	if err != nil {
		// Selhání scrapu se nikdy nepropaguje dál: úloha končí 200
		// a chyba zůstává v logu.
		summary.Outcome = "menu_unavailable"
		runLog.Error().Err(err).Str("date", domain.DateKey(orderDate)).Msg("reminder: jídelníček se nepodařilo získat")
		return summary, nil
	}

	subscribers, err := s.subscribers.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("výběr odběratelů: %w", err)
	}
	if len(subscribers) == 0 {
		summary.Outcome = "no_users"
		return summary, nil
	}

	hour := now.Hour()
	for _, sub := range subscribers {
		eligible, err := s.isEligibleNow(ctx, sub, orderDate, hour)
		if err != nil {
			runLog.Error().Err(err).Str("user", sub.SlackUserID).Msg("reminder: kontrola způsobilosti selhala")
			summary.Skipped++
			continue
		}
		if !eligible {
			summary.Skipped++
			continue
		}

		if err := s.sendReminderTo(ctx, sub, dishes, orderDate); err != nil {
			metrics.ReminderSendErrors.Inc()
			runLog.Error().Err(err).Str("user", sub.SlackUserID).Msg("reminder: odeslání selhalo")
			continue
		}
		metrics.RemindersSent.Inc()
		summary.Sent++
	}

	summary.Outcome = "ok"
	runLog.Info().Int("sent", summary.Sent).Int("skipped", summary.Skipped).Msg("reminder: běh dokončen")
	return summary, nil
}

func (s *Service) isEligibleNow(ctx context.Context, sub domain.Subscriber, orderDate time.Time, hour int) (bool, error) {
	hasOrdered, err := s.orders.HasOrdered(ctx, sub.SlackUserID, orderDate)
	if err != nil {
		return false, fmt.Errorf("kontrola objednávky: %w", err)
	}

	settings := domain.DefaultSettings(sub.GoogleEmail)
	if sub.GoogleEmail != "" {
		stored, err := s.settings.GetByEmail(ctx, sub.GoogleEmail)
		if err == nil {
			settings = stored
		} else {
			s.log.Warn().Err(err).Str("user", sub.SlackUserID).Msg("reminder: nastavení se nepodařilo načíst, platí výchozí")
		}
	}

	return s.window.IsEligible(EligibilityInput{
		Subscriber:    sub,
		Settings:      settings,
		HasOrdered:    hasOrdered,
		NextOrderDate: orderDate,
		Hour:          hour,
	}), nil
}

func (s *Service) sendReminderTo(ctx context.Context, sub domain.Subscriber, dishes []string, orderDate time.Time) error {
	if len(dishes) == 0 {
		text := fmt.Sprintf("Na %s bohužel není v nabídce žádné jídlo za %d Kč. 🙁", domain.DateKey(orderDate), s.targetPrice)
		return s.notifier.SendText(ctx, sub.SlackUserID, text)
	}

	remarks := s.remarksFor(ctx, sub.SlackUserID, dishes)
	return s.notifier.SendReminder(ctx, sub.SlackUserID, dishes, remarks, orderDate)
}

// remarksFor sestavuje kosmetické poznámky k jídlům podle historie
// objednávek příjemce. Chyba čtení historie poznámky jen vynechá.
func (s *Service) remarksFor(ctx context.Context, userID string, dishes []string) map[string]string {
	history, err := s.orders.ListHistoryFor(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("reminder: historie objednávek nedostupná")
		return nil
	}
	if len(history) == 0 {
		return nil
	}

	remarks := make(map[string]string)
	for _, dish := range dishes {
		bucket, count := BucketForDish(history, dish)
		if bucket == BucketNone {
			continue
		}
		if remark := s.pickRemark(bucket, count); remark != "" {
			remarks[dish] = remark
		}
	}
	return remarks
}

// RunMorning připomíná ráno v pracovní den, co si kdo objednal na dnešek.
func (s *Service) RunMorning(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	runLog := s.log.With().Str("run_id", summary.RunID).Logger()

	now := s.clock.Now()
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		summary.Outcome = "not_a_workday"
		return summary, nil
	}

	today := dateOnly(now)
	orders, err := s.orders.ListForDate(ctx, today)
	if err != nil {
		return summary, fmt.Errorf("výběr objednávek: %w", err)
	}
	if len(orders) == 0 {
		summary.Outcome = "no_orders"
		return summary, nil
	}

	for _, order := range orders {
		if err := s.notifier.SendMorningReminder(ctx, order.OrderedFor, order.MealDescription, order.OrderForDate); err != nil {
			metrics.ReminderSendErrors.Inc()
			runLog.Error().Err(err).Str("user", order.OrderedFor).Msg("reminder: ranní připomínka selhala")
			continue
		}
		summary.Sent++
	}

	summary.Outcome = "ok"
	return summary, nil
}
