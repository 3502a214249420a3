package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pepeeats/internal/domain"
)

// fakeLedger napodobuje chování repozitáře: upsert podle trojice
// (objednávající, příjemce, den) a existence podle objednávajícího.
type fakeLedger struct {
	entries map[string]domain.Order
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[string]domain.Order)}
}

func ledgerKey(orderedBy, orderedFor string, date time.Time) string {
	return orderedBy + "|" + orderedFor + "|" + domain.DateKey(date)
}

func (f *fakeLedger) PlaceOrder(_ context.Context, order domain.Order) error {
	f.entries[ledgerKey(order.OrderedBy, order.OrderedFor, order.OrderForDate)] = order
	return nil
}

func (f *fakeLedger) HasOrdered(_ context.Context, orderedBy string, date time.Time) (bool, error) {
	for _, order := range f.entries {
		if order.OrderedBy == orderedBy && domain.DateKey(order.OrderForDate) == domain.DateKey(date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) ListForDate(_ context.Context, date time.Time) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range f.entries {
		if domain.DateKey(order.OrderForDate) == domain.DateKey(date) {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeLedger) MonthlySpend(_ context.Context, userID string, year int, month time.Month) (domain.MonthlySpend, error) {
	var spend domain.MonthlySpend
	for _, order := range f.entries {
		if order.OrderedBy != userID {
			continue
		}
		if order.OrderForDate.Year() != year || order.OrderForDate.Month() != month {
			continue
		}
		spend.OrderCount++
		spend.TotalPrice += order.Price
	}
	return spend, nil
}

func (f *fakeLedger) SetRating(_ context.Context, orderedBy, orderedFor string, date time.Time, rating int) error {
	key := ledgerKey(orderedBy, orderedFor, date)
	order, ok := f.entries[key]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Rating = &rating
	f.entries[key] = order
	return nil
}

func (f *fakeLedger) ListHistoryFor(_ context.Context, orderedFor string) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range f.entries {
		if order.OrderedFor == orderedFor {
			out = append(out, order)
		}
	}
	return out, nil
}

type fakeSubscribers struct {
	snoozeCleared []string
}

func (f *fakeSubscribers) Add(context.Context, string) error    { return nil }
func (f *fakeSubscribers) Remove(context.Context, string) error { return nil }
func (f *fakeSubscribers) Get(context.Context, string) (domain.Subscriber, error) {
	return domain.Subscriber{}, domain.ErrSubscriberNotFound
}
func (f *fakeSubscribers) List(context.Context) ([]domain.Subscriber, error) { return nil, nil }
func (f *fakeSubscribers) SetSnooze(context.Context, string, time.Time) error {
	return nil
}
func (f *fakeSubscribers) ClearSnooze(_ context.Context, userID string) error {
	f.snoozeCleared = append(f.snoozeCleared, userID)
	return nil
}
func (f *fakeSubscribers) SetGoogleEmail(context.Context, string, string) error { return nil }

type silentNotifier struct{}

func (silentNotifier) SendText(context.Context, string, string) error { return nil }
func (silentNotifier) SendReminder(context.Context, string, []string, map[string]string, time.Time) error {
	return nil
}
func (silentNotifier) SendMorningReminder(context.Context, string, string, time.Time) error {
	return nil
}

type recordingNotifier struct {
	silentNotifier
	texts []string
}

func (n *recordingNotifier) SendText(_ context.Context, _, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testDay = time.Date(2024, time.June, 13, 0, 0, 0, 0, time.UTC)

func newTestService(ledger *fakeLedger, subs *fakeSubscribers) *Service {
	return NewService(ledger, subs, silentNotifier{}, fixedClock{time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)}, 125, zerolog.Nop())
}

func TestPlaceOrderIsIdempotentPerTriple(t *testing.T) {
	ledger := newFakeLedger()
	service := newTestService(ledger, &fakeSubscribers{})

	if err := service.PlaceOrder(context.Background(), "U1", "", "Guláš", testDay); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if err := service.PlaceOrder(context.Background(), "U1", "", "Svíčková", testDay); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}

	if len(ledger.entries) != 1 {
		t.Fatalf("opakovaná objednávka přepisuje, nezakládá: %d záznamů", len(ledger.entries))
	}
	order := ledger.entries[ledgerKey("U1", "U1", testDay)]
	if order.MealDescription != "Svíčková" {
		t.Fatalf("jídlo mělo být přepsáno na Svíčkovou, je %q", order.MealDescription)
	}
}

func TestPlaceOrderForBeneficiariesCountsByOrderer(t *testing.T) {
	ledger := newFakeLedger()
	service := newTestService(ledger, &fakeSubscribers{})

	if err := service.PlaceOrder(context.Background(), "U1", "U1", "Guláš", testDay); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if err := service.PlaceOrder(context.Background(), "U1", "U2", "Svíčková", testDay); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}

	if len(ledger.entries) != 2 {
		t.Fatalf("objednávky pro různé příjemce jsou dva záznamy, je %d", len(ledger.entries))
	}
	ordered, err := ledger.HasOrdered(context.Background(), "U1", testDay)
	if err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if !ordered {
		t.Fatal("HasOrdered hledá podle objednávajícího napříč příjemci")
	}
}

func TestPlaceOrderClearsSnooze(t *testing.T) {
	subs := &fakeSubscribers{}
	service := newTestService(newFakeLedger(), subs)

	if err := service.PlaceOrder(context.Background(), "U1", "", "Guláš", testDay); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if len(subs.snoozeCleared) != 1 || subs.snoozeCleared[0] != "U1" {
		t.Fatalf("objednávka má zrušit snooze objednávajícího, dostali %v", subs.snoozeCleared)
	}
}

func TestRateOrderRequiresExistingOrder(t *testing.T) {
	service := newTestService(newFakeLedger(), &fakeSubscribers{})

	err := service.RateOrder(context.Background(), "U1", "", testDay, 80)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("hodnocení bez objednávky se hlásí, dostali %v", err)
	}
}

func TestRateOrderMutatesExistingOrder(t *testing.T) {
	ledger := newFakeLedger()
	service := newTestService(ledger, &fakeSubscribers{})

	if err := service.PlaceOrder(context.Background(), "U1", "", "Guláš", testDay); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if err := service.RateOrder(context.Background(), "U1", "", testDay, 90); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}

	order := ledger.entries[ledgerKey("U1", "U1", testDay)]
	if order.Rating == nil || *order.Rating != 90 {
		t.Fatalf("hodnocení se mělo připsat existující objednávce: %+v", order)
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("hodnocení nesmí zakládat nový záznam")
	}
}

func TestPlaceOrderConfirmationIncludesMonthlySpend(t *testing.T) {
	ledger := newFakeLedger()
	notifier := &recordingNotifier{}
	service := NewService(ledger, &fakeSubscribers{}, notifier, fixedClock{time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)}, 125, zerolog.Nop())

	if err := service.PlaceOrder(context.Background(), "U1", "", "Guláš", testDay.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if err := service.PlaceOrder(context.Background(), "U1", "", "Svíčková", testDay); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}

	if len(notifier.texts) != 2 {
		t.Fatalf("očekávali jsme dvě potvrzení, je %d", len(notifier.texts))
	}
	last := notifier.texts[1]
	if !strings.Contains(last, "2. objednávka") || !strings.Contains(last, "250 Kč") {
		t.Fatalf("potvrzení má shrnout měsíční útratu: %q", last)
	}
}

func TestRateOrderValidatesRange(t *testing.T) {
	service := newTestService(newFakeLedger(), &fakeSubscribers{})
	if err := service.RateOrder(context.Background(), "U1", "", testDay, 150); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("očekávali jsme ErrInvalidRating, dostali %v", err)
	}
}
