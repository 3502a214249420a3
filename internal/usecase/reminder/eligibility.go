package reminder

import (
	"time"

	"pepeeats/internal/domain"
)

// Window popisuje pracovní okno, ve kterém se připomínky posílají.
type Window struct {
	StartHour  int
	EndHour    int
	MiddayHour int
}

// IsReminderDay vrací true pro dny, kdy má smysl připomínat objednávku
// na další pracovní den: neděle až čtvrtek. V pátek a v sobotu se
// úloha vůbec nespouští.
func IsReminderDay(day time.Weekday) bool {
	switch day {
	case time.Friday, time.Saturday:
		return false
	default:
		return true
	}
}

// NextOrderDate vrací den, na který se objednává. Pátek přeskakuje
// víkend na pondělí, sobota žádné datum nepočítá.
func NextOrderDate(today time.Time) (time.Time, bool) {
	switch today.Weekday() {
	case time.Saturday:
		return time.Time{}, false
	case time.Friday:
		return dateOnly(today.AddDate(0, 0, 3)), true
	default:
		return dateOnly(today.AddDate(0, 0, 1)), true
	}
}

// EligibilityInput je vstup čistého rozhodnutí o způsobilosti.
type EligibilityInput struct {
	Subscriber    domain.Subscriber
	Settings      domain.UserSettings
	HasOrdered    bool
	NextOrderDate time.Time
	Hour          int
}

// IsEligible rozhoduje, zda uživateli teď poslat připomínku.
// Čistá funkce bez vedlejších efektů:
//   - existující objednávka uživatele na daný den blokuje vždy,
//   - snooze do data >= objednávaného dne blokuje vždy,
//   - testovací uživatel projde vždy,
//   - jinak musí hodina padnout do pracovního okna a odpovídat
//     zvolené frekvenci.
func (w Window) IsEligible(in EligibilityInput) bool {
	if in.HasOrdered {
		return false
	}
	if s := in.Subscriber.SnoozedUntil; s != nil && !dateOnly(*s).Before(dateOnly(in.NextOrderDate)) {
		return false
	}
	if in.Settings.IsTestUser {
		return true
	}
	if in.Hour < w.StartHour || in.Hour >= w.EndHour {
		return false
	}
	switch in.Settings.Frequency {
	case domain.FrequencyEvery2h:
		return (in.Hour-w.StartHour)%2 == 0
	case domain.FrequencyEvery4h:
		return (in.Hour-w.StartHour)%4 == 0
	default:
		return in.Hour == w.MiddayHour
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
