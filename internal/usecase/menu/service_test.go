package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pepeeats/internal/domain"
)

type stubCache struct {
	entries map[string][]string
	puts    int
	getErr  error
	putErr  error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]string)}
}

func (c *stubCache) Get(_ context.Context, date time.Time) ([]string, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	dishes, ok := c.entries[domain.DateKey(date)]
	if !ok {
		return nil, domain.ErrMenuNotCached
	}
	return dishes, nil
}

func (c *stubCache) Put(_ context.Context, date time.Time, dishes []string) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[domain.DateKey(date)] = dishes
	return nil
}

type stubSource struct {
	dishes  []string
	err     error
	fetches int
}

func (s *stubSource) FetchMenu(context.Context, time.Time) ([]string, error) {
	s.fetches++
	return s.dishes, s.err
}

func TestMenuForRoundTrip(t *testing.T) {
	cache := newStubCache()
	source := &stubSource{dishes: []string{"Svíčková", "Guláš", "Svíčková"}}
	service := NewService(cache, source, zerolog.Nop())
	date := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)

	first, err := service.MenuFor(context.Background(), date)
	if err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	second, err := service.MenuFor(context.Background(), date)
	if err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}

	if source.fetches != 1 {
		t.Fatalf("očekávali jsme jediné stažení, proběhlo %d", source.fetches)
	}
	if len(second) != len(first) {
		t.Fatalf("keš vrátila jiný počet jídel: %v vs %v", second, first)
	}
	for i := range first {
		if second[i] != first[i] {
			t.Fatalf("keš změnila pořadí nebo znění: %v vs %v", second, first)
		}
	}
}

func TestMenuForDoesNotCacheFailures(t *testing.T) {
	cache := newStubCache()
	wantErr := errors.New("výpadek sítě")
	source := &stubSource{err: wantErr}
	service := NewService(cache, source, zerolog.Nop())
	date := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)

	_, err := service.MenuFor(context.Background(), date)
	if !errors.Is(err, wantErr) {
		t.Fatalf("očekávali jsme chybu zdroje, dostali %v", err)
	}
	if cache.puts != 0 {
		t.Fatalf("selhání se nesmí ukládat do keše")
	}
}

func TestMenuForToleratesCachePutFailure(t *testing.T) {
	cache := newStubCache()
	cache.putErr = errors.New("redis nedostupný")
	source := &stubSource{dishes: []string{"Svíčková"}}
	service := NewService(cache, source, zerolog.Nop())
	date := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)

	dishes, err := service.MenuFor(context.Background(), date)
	if err != nil {
		t.Fatalf("selhání zápisu do keše nesmí zahodit stažený jídelníček: %v", err)
	}
	if len(dishes) != 1 || dishes[0] != "Svíčková" {
		t.Fatalf("očekávali jsme [Svíčková], dostali %v", dishes)
	}
}

func TestMenuForFetchesWhenCacheReadFails(t *testing.T) {
	cache := newStubCache()
	cache.getErr = errors.New("redis nedostupný")
	source := &stubSource{dishes: []string{"Guláš"}}
	service := NewService(cache, source, zerolog.Nop())
	date := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)

	dishes, err := service.MenuFor(context.Background(), date)
	if err != nil {
		t.Fatalf("výpadek keše nesmí shodit čtení jídelníčku: %v", err)
	}
	if source.fetches != 1 {
		t.Fatalf("při nedostupné keši se má stahovat, proběhlo %d stažení", source.fetches)
	}
	if len(dishes) != 1 || dishes[0] != "Guláš" {
		t.Fatalf("očekávali jsme [Guláš], dostali %v", dishes)
	}
}

func TestMenuForCachesEmptyResult(t *testing.T) {
	cache := newStubCache()
	source := &stubSource{dishes: []string{}}
	service := NewService(cache, source, zerolog.Nop())
	date := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)

	if _, err := service.MenuFor(context.Background(), date); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if _, err := service.MenuFor(context.Background(), date); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}
	if source.fetches != 1 {
		t.Fatalf("prázdná nabídka je platný výsledek a keší se, proběhlo %d stažení", source.fetches)
	}
}
