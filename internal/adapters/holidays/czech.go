package holidays

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/cz"

	"pepeeats/internal/domain"
)

// CzechCalendar odpovídá na otázku, zda je den státní svátek v ČR.
type CzechCalendar struct {
	cal *cal.Calendar
}

var _ domain.HolidayChecker = (*CzechCalendar)(nil)

// NewCzechCalendar vytváří kalendář se všemi českými svátky.
func NewCzechCalendar() *CzechCalendar {
	c := &cal.Calendar{}
	c.AddHoliday(cz.Holidays...)
	return &CzechCalendar{cal: c}
}

// IsHoliday vrací true, pokud na daný den připadá svátek.
func (c *CzechCalendar) IsHoliday(date time.Time) bool {
	actual, _, _ := c.cal.IsHoliday(date)
	return actual
}
