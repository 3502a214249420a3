package menu

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"pepeeats/internal/domain"
)

// Service obsluhuje čtení jídelníčku: nejdřív keš, při chybění stažení
// od dodavatele a zápis zpět. Jednou nakešované datum se už nestahuje.
type Service struct {
	cache  domain.MenuCache
	source domain.MenuSource
	log    zerolog.Logger
}

// NewService vytváří službu jídelníčku.
func NewService(cache domain.MenuCache, source domain.MenuSource, log zerolog.Logger) *Service {
	return &Service{cache: cache, source: source, log: log}
}

// MenuFor vrací jídla za cílovou cenu pro zadané datum.
// Chyby stahování propouští beze změny, volající je překládá uživateli.
// Selhání zápisu do keše úspěšně stažený jídelníček nezahazuje.
func (s *Service) MenuFor(ctx context.Context, date time.Time) ([]string, error) {
	dishes, err := s.cache.Get(ctx, date)
	if err == nil {
		return dishes, nil
	}
	if !errors.Is(err, domain.ErrMenuNotCached) {
		s.log.Warn().Err(err).Str("date", domain.DateKey(date)).Msg("menu: čtení keše selhalo")
	}

	dishes, err = s.source.FetchMenu(ctx, date)
	if err != nil {
		return nil, err
	}
	if putErr := s.cache.Put(ctx, date, dishes); putErr != nil {
		s.log.Warn().Err(putErr).Str("date", domain.DateKey(date)).Msg("menu: zápis do keše selhal")
	}
	return dishes, nil
}
