package domain

import (
	"strings"
	"time"
)

// NotificationFrequency určuje, jak často má uživatel dostávat připomínky.
type NotificationFrequency string

const (
	// FrequencyDaily znamená jednu připomínku v poledním okně.
	FrequencyDaily NotificationFrequency = "daily"
	// FrequencyEvery2h znamená připomínku každé dvě hodiny pracovního okna.
	FrequencyEvery2h NotificationFrequency = "every_2h"
	// FrequencyEvery4h znamená připomínku každé čtyři hodiny pracovního okna.
	FrequencyEvery4h NotificationFrequency = "every_4h"
)

// Subscriber popisuje odebírajícího uživatele Slacku.
type Subscriber struct {
	SlackUserID  string
	SubscribedAt time.Time
	SnoozedUntil *time.Time
	GoogleEmail  string
}

// UserSettings drží nastavení uživatele. Klíčem je e-mail, ne Slack ID,
// aby nastavení přežilo změnu workspace.
type UserSettings struct {
	Email      string
	Frequency  NotificationFrequency
	IsTestUser bool
}

// DefaultSettings vrací výchozí nastavení pro uživatele bez uloženého záznamu.
func DefaultSettings(email string) UserSettings {
	return UserSettings{Email: email, Frequency: FrequencyDaily}
}

// Order představuje jednu objednávku oběda. Identitou je trojice
// (OrderedBy, OrderedFor, OrderForDate); opakované uložení přepisuje.
type Order struct {
	OrderedBy       string
	OrderedFor      string
	MealDescription string
	OrderForDate    time.Time
	PlacedOnDate    time.Time
	Price           int
	Rating          *int
}

// MonthlySpend shrnuje útratu uživatele za kalendářní měsíc.
type MonthlySpend struct {
	TotalPrice int
	OrderCount int
}

// MenuEntry drží jídelníček jednoho dne.
type MenuEntry struct {
	ForDate   time.Time
	Dishes    []string
	FetchedAt time.Time
}

// NormalizeDish převádí název jídla na kanonickou identitu pro porovnávání
// s historií objednávek. Původní znění zůstává pro zobrazení.
func NormalizeDish(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DateKey formátuje datum jako klíč YYYY-MM-DD používaný v keši i v ledgeru.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
