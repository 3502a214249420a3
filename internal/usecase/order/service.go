package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pepeeats/internal/domain"
	"pepeeats/internal/infra/metrics"
)

// ErrInvalidRating vrací služba pro hodnocení mimo rozsah 0–100.
var ErrInvalidRating = errors.New("hodnocení musí být v rozsahu 0 až 100")

// Service obsluhuje ledger objednávek.
type Service struct {
	orders      domain.OrderRepo
	subscribers domain.SubscriberRepo
	notifier    domain.Notifier
	clock       domain.Clock
	targetPrice int
	log         zerolog.Logger
}

// NewService vytváří službu objednávek.
func NewService(orders domain.OrderRepo, subscribers domain.SubscriberRepo, notifier domain.Notifier, clock domain.Clock, targetPrice int, log zerolog.Logger) *Service {
	return &Service{
		orders:      orders,
		subscribers: subscribers,
		notifier:    notifier,
		clock:       clock,
		targetPrice: targetPrice,
		log:         log,
	}
}

// PlaceOrder ukládá objednávku. Identitou je trojice
// (objednávající, příjemce, den) — opakované odeslání přepisuje jídlo.
// Uložená objednávka zároveň ruší snooze objednávajícího.
func (s *Service) PlaceOrder(ctx context.Context, orderedBy, orderedFor, dish string, orderForDate time.Time) error {
	if orderedFor == "" {
		orderedFor = orderedBy
	}

	now := s.clock.Now()
	order := domain.Order{
		OrderedBy:       orderedBy,
		OrderedFor:      orderedFor,
		MealDescription: dish,
		OrderForDate:    orderForDate,
		PlacedOnDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Price:           s.targetPrice,
	}
	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		return fmt.Errorf("uložení objednávky: %w", err)
	}
	metrics.OrdersPlaced.Inc()

	if err := s.subscribers.ClearSnooze(ctx, orderedBy); err != nil {
		s.log.Warn().Err(err).Str("user", orderedBy).Msg("order: zrušení snoozu selhalo")
	}

	confirmation := fmt.Sprintf("Díky! Uložil jsem, že na %s máš objednáno: *%s*", domain.DateKey(orderForDate), dish)
	if orderedFor != orderedBy {
		confirmation = fmt.Sprintf("Díky! Uložil jsem objednávku pro <@%s> na %s: *%s*", orderedFor, domain.DateKey(orderForDate), dish)
		beneficiaryNote := fmt.Sprintf("<@%s> ti objednal/a na %s: *%s* 🐸", orderedBy, domain.DateKey(orderForDate), dish)
		if err := s.notifier.SendText(ctx, orderedFor, beneficiaryNote); err != nil {
			s.log.Warn().Err(err).Str("user", orderedFor).Msg("order: zpráva příjemci selhala")
		}
	}
	if spend, err := s.orders.MonthlySpend(ctx, orderedBy, orderForDate.Year(), orderForDate.Month()); err == nil && spend.OrderCount > 0 {
		confirmation += fmt.Sprintf("\nTento měsíc to je tvoje %d. objednávka, celkem za %d Kč.", spend.OrderCount, spend.TotalPrice)
	}
	if err := s.notifier.SendText(ctx, orderedBy, confirmation); err != nil {
		s.log.Warn().Err(err).Str("user", orderedBy).Msg("order: potvrzení selhalo")
	}
	return nil
}

// RateOrder připisuje hodnocení existující objednávce. Chybějící
// objednávka je chyba hlášená volajícímu, nikdy se nezakládá nová.
func (s *Service) RateOrder(ctx context.Context, orderedBy, orderedFor string, date time.Time, rating int) error {
	if rating < 0 || rating > 100 {
		return ErrInvalidRating
	}
	if orderedFor == "" {
		orderedFor = orderedBy
	}
	if err := s.orders.SetRating(ctx, orderedBy, orderedFor, date, rating); err != nil {
		return fmt.Errorf("uložení hodnocení: %w", err)
	}
	return nil
}

// MonthlySpend vrací útratu a počet objednávek uživatele za měsíc.
func (s *Service) MonthlySpend(ctx context.Context, userID string, year int, month time.Month) (domain.MonthlySpend, error) {
	return s.orders.MonthlySpend(ctx, userID, year, month)
}
