package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pepeeats/internal/domain"
	"pepeeats/internal/infra/metrics"
)

// Postgres implementuje repozitáře nad pgxpool.
type Postgres struct {
	pool         *pgxpool.Pool
	defaultPrice int
}

var (
	_ domain.SubscriberRepo = (*Postgres)(nil)
	_ domain.SettingsRepo   = (*Postgres)(nil)
	_ domain.OrderRepo      = (*Postgres)(nil)
)

// NewPostgres vytváří adaptér DB. defaultPrice se používá při součtu
// měsíční útraty pro objednávky bez uložené ceny.
func NewPostgres(pool *pgxpool.Pool, defaultPrice int) *Postgres {
	return &Postgres{pool: pool, defaultPrice: defaultPrice}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Add zakládá odběratele. Opakované přihlášení je neškodné.
func (p *Postgres) Add(ctx context.Context, slackUserID string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO subscribers (slack_user_id, subscribed_at)
VALUES ($1, now())
ON CONFLICT (slack_user_id) DO NOTHING
`, slackUserID)
	metrics.ObserveNetworkRequest("postgres", "subscribers_add", "subscribers", start, err)
	return err
}

// Remove odhlašuje odběratele.
func (p *Postgres) Remove(ctx context.Context, slackUserID string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `DELETE FROM subscribers WHERE slack_user_id=$1`, slackUserID)
	metrics.ObserveNetworkRequest("postgres", "subscribers_remove", "subscribers", start, err)
	return err
}

// Get vrací odběratele podle Slack ID.
func (p *Postgres) Get(ctx context.Context, slackUserID string) (domain.Subscriber, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var (
		sub     domain.Subscriber
		snoozed sql.NullTime
		email   sql.NullString
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT slack_user_id, subscribed_at, snoozed_until, google_email
FROM subscribers WHERE slack_user_id=$1
`, slackUserID).Scan(&sub.SlackUserID, &sub.SubscribedAt, &snoozed, &email)
	metrics.ObserveNetworkRequest("postgres", "subscribers_get", "subscribers", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Subscriber{}, domain.ErrSubscriberNotFound
	}
	if err != nil {
		return domain.Subscriber{}, err
	}
	if snoozed.Valid {
		ts := snoozed.Time
		sub.SnoozedUntil = &ts
	}
	if email.Valid {
		sub.GoogleEmail = email.String
	}
	return sub, nil
}

// List vrací všechny odběratele.
func (p *Postgres) List(ctx context.Context) ([]domain.Subscriber, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT slack_user_id, subscribed_at, snoozed_until, google_email
FROM subscribers ORDER BY subscribed_at
`)
	metrics.ObserveNetworkRequest("postgres", "subscribers_list", "subscribers", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		var (
			sub     domain.Subscriber
			snoozed sql.NullTime
			email   sql.NullString
		)
		if err := rows.Scan(&sub.SlackUserID, &sub.SubscribedAt, &snoozed, &email); err != nil {
			return nil, err
		}
		if snoozed.Valid {
			ts := snoozed.Time
			sub.SnoozedUntil = &ts
		}
		if email.Valid {
			sub.GoogleEmail = email.String
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SetSnooze nastavuje datum, do kterého se uživateli nepřipomíná.
func (p *Postgres) SetSnooze(ctx context.Context, slackUserID string, until time.Time) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE subscribers SET snoozed_until=$2 WHERE slack_user_id=$1`, slackUserID, until)
	metrics.ObserveNetworkRequest("postgres", "subscribers_set_snooze", "subscribers", start, err)
	return err
}

// ClearSnooze ruší snooze uživatele.
func (p *Postgres) ClearSnooze(ctx context.Context, slackUserID string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE subscribers SET snoozed_until=NULL WHERE slack_user_id=$1`, slackUserID)
	metrics.ObserveNetworkRequest("postgres", "subscribers_clear_snooze", "subscribers", start, err)
	return err
}

// SetGoogleEmail ukládá e-mail, přes který se hledá nastavení.
func (p *Postgres) SetGoogleEmail(ctx context.Context, slackUserID, email string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE subscribers SET google_email=$2 WHERE slack_user_id=$1`, slackUserID, email)
	metrics.ObserveNetworkRequest("postgres", "subscribers_set_email", "subscribers", start, err)
	return err
}

// GetByEmail vrací nastavení uživatele, při chybějícím záznamu výchozí.
func (p *Postgres) GetByEmail(ctx context.Context, email string) (domain.UserSettings, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var settings domain.UserSettings
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT email, notification_frequency, is_test_user
FROM user_settings WHERE email=$1
`, email).Scan(&settings.Email, &settings.Frequency, &settings.IsTestUser)
	metrics.ObserveNetworkRequest("postgres", "user_settings_get", "user_settings", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(email), nil
	}
	if err != nil {
		return domain.UserSettings{}, err
	}
	return settings, nil
}

// Save ukládá nastavení merge-upsertem; záznamy se nikdy nemažou.
func (p *Postgres) Save(ctx context.Context, settings domain.UserSettings) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO user_settings (email, notification_frequency, is_test_user)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET notification_frequency=EXCLUDED.notification_frequency, is_test_user=EXCLUDED.is_test_user
`, settings.Email, settings.Frequency, settings.IsTestUser)
	metrics.ObserveNetworkRequest("postgres", "user_settings_save", "user_settings", start, err)
	return err
}

// PlaceOrder ukládá objednávku upsertem podle identity
// (ordered_by, ordered_for, order_for_date).
func (p *Postgres) PlaceOrder(ctx context.Context, order domain.Order) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO orders (ordered_by, ordered_for, meal_description, order_for_date, placed_on_date, price)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (ordered_by, ordered_for, order_for_date)
DO UPDATE SET meal_description=EXCLUDED.meal_description, placed_on_date=EXCLUDED.placed_on_date, price=EXCLUDED.price
`, order.OrderedBy, order.OrderedFor, order.MealDescription, order.OrderForDate, order.PlacedOnDate, order.Price)
	metrics.ObserveNetworkRequest("postgres", "orders_upsert", "orders", start, err)
	return err
}

// HasOrdered zjišťuje existenci objednávky podle objednávajícího napříč
// příjemci. Dřívější kontrola složeného klíče objednávky pro druhé
// přehlížela, proto se hledá podle ordered_by.
func (p *Postgres) HasOrdered(ctx context.Context, orderedBy string, date time.Time) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var exists bool
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM orders WHERE ordered_by=$1 AND order_for_date=$2)
`, orderedBy, date).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "orders_has_ordered", "orders", start, err)
	return exists, err
}

// ListForDate vrací objednávky pro daný den.
func (p *Postgres) ListForDate(ctx context.Context, date time.Time) ([]domain.Order, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT ordered_by, ordered_for, meal_description, order_for_date, placed_on_date, price, rating
FROM orders WHERE order_for_date=$1
ORDER BY ordered_for
`, date)
	metrics.ObserveNetworkRequest("postgres", "orders_list_for_date", "orders", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// MonthlySpend sčítá útratu a počet objednávek uživatele za měsíc.
// Objednávky bez uložené ceny se počítají za výchozí cílovou cenu.
func (p *Postgres) MonthlySpend(ctx context.Context, userID string, year int, month time.Month) (domain.MonthlySpend, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var spend domain.MonthlySpend
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(CASE WHEN price > 0 THEN price ELSE $4 END), 0), COUNT(*)
FROM orders
WHERE ordered_by=$1 AND order_for_date >= $2 AND order_for_date < $3
`, userID, from, to, p.defaultPrice).Scan(&spend.TotalPrice, &spend.OrderCount)
	metrics.ObserveNetworkRequest("postgres", "orders_monthly_spend", "orders", start, err)
	return spend, err
}

// SetRating připisuje hodnocení existující objednávce. Chybějící cíl
// vrací domain.ErrOrderNotFound, nový záznam se nikdy nezakládá.
func (p *Postgres) SetRating(ctx context.Context, orderedBy, orderedFor string, date time.Time, rating int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	res, err := p.pool.Exec(ctx, `
UPDATE orders SET rating=$4
WHERE ordered_by=$1 AND ordered_for=$2 AND order_for_date=$3
`, orderedBy, orderedFor, date, rating)
	metrics.ObserveNetworkRequest("postgres", "orders_set_rating", "orders", start, err)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ListHistoryFor vrací historii objednávek příjemce pro poznámky k menu.
func (p *Postgres) ListHistoryFor(ctx context.Context, orderedFor string) ([]domain.Order, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT ordered_by, ordered_for, meal_description, order_for_date, placed_on_date, price, rating
FROM orders WHERE ordered_for=$1
ORDER BY order_for_date
`, orderedFor)
	metrics.ObserveNetworkRequest("postgres", "orders_list_history", "orders", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var (
			order  domain.Order
			rating sql.NullInt64
		)
		if err := rows.Scan(&order.OrderedBy, &order.OrderedFor, &order.MealDescription, &order.OrderForDate, &order.PlacedOnDate, &order.Price, &rating); err != nil {
			return nil, err
		}
		if rating.Valid {
			value := int(rating.Int64)
			order.Rating = &value
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
