package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMenuNotCached vrací keš, pokud pro dané datum nic neuložila.
var ErrMenuNotCached = errors.New("menu pro dané datum není v keši")

// ErrOrderNotFound vrací ledger, pokud objednávka k ohodnocení neexistuje.
var ErrOrderNotFound = errors.New("objednávka nebyla nalezena")

// ErrSubscriberNotFound vrací repozitář, pokud uživatel není přihlášen k odběru.
var ErrSubscriberNotFound = errors.New("uživatel není přihlášen k odběru")

// SubscriberRepo spravuje odběratele připomínek.
type SubscriberRepo interface {
	Add(ctx context.Context, slackUserID string) error
	Remove(ctx context.Context, slackUserID string) error
	Get(ctx context.Context, slackUserID string) (Subscriber, error)
	List(ctx context.Context) ([]Subscriber, error)
	SetSnooze(ctx context.Context, slackUserID string, until time.Time) error
	ClearSnooze(ctx context.Context, slackUserID string) error
	SetGoogleEmail(ctx context.Context, slackUserID, email string) error
}

// SettingsRepo spravuje nastavení klíčovaná e-mailem.
type SettingsRepo interface {
	GetByEmail(ctx context.Context, email string) (UserSettings, error)
	Save(ctx context.Context, settings UserSettings) error
}

// OrderRepo je ledger objednávek.
type OrderRepo interface {
	PlaceOrder(ctx context.Context, order Order) error
	HasOrdered(ctx context.Context, orderedBy string, date time.Time) (bool, error)
	ListForDate(ctx context.Context, date time.Time) ([]Order, error)
	MonthlySpend(ctx context.Context, userID string, year int, month time.Month) (MonthlySpend, error)
	SetRating(ctx context.Context, orderedBy, orderedFor string, date time.Time, rating int) error
	ListHistoryFor(ctx context.Context, orderedFor string) ([]Order, error)
}

// MenuCache ukládá jednou stažený jídelníček pro daný den.
type MenuCache interface {
	Get(ctx context.Context, date time.Time) ([]string, error)
	Put(ctx context.Context, date time.Time, dishes []string) error
}

// MenuSource stahuje jídelníček z webu dodavatele.
type MenuSource interface {
	FetchMenu(ctx context.Context, date time.Time) ([]string, error)
}

// Notifier odesílá zprávy uživatelům přes chatovací platformu.
type Notifier interface {
	SendText(ctx context.Context, userID, text string) error
	SendReminder(ctx context.Context, userID string, dishes []string, remarks map[string]string, orderDate time.Time) error
	SendMorningReminder(ctx context.Context, userID, meal string, orderDate time.Time) error
}

// HolidayChecker rozhoduje, zda je datum státní svátek.
type HolidayChecker interface {
	IsHoliday(date time.Time) bool
}

// Clock poskytuje aktuální čas v časové zóně dodavatele.
type Clock interface {
	Now() time.Time
}
