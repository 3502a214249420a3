package clock

import "time"

// LocationClock vrací aktuální čas v pevně dané časové zóně dodavatele.
// Nahrazuje dřívější aritmetiku s pevným UTC offsetem, která ignorovala DST.
type LocationClock struct {
	loc *time.Location
}

// NewLocation vytváří hodiny pro zadanou zónu.
func NewLocation(name string) (*LocationClock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return &LocationClock{loc: loc}, nil
}

// Now vrací čas v zóně dodavatele.
func (c *LocationClock) Now() time.Time {
	return time.Now().In(c.loc)
}
