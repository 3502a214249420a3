package lunchdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pepeeats/internal/domain"
	"pepeeats/internal/infra/metrics"
)

// ErrNotPublishedYet znamená, že dodavatel jídelníček pro dané datum
// ještě nezveřejnil.
var ErrNotPublishedYet = errors.New("menu pro dané datum ještě není zveřejněno")

// ErrTableMissing znamená, že nadpis dne existuje, ale tabulka s menu chybí.
var ErrTableMissing = errors.New("tabulka s menu nebyla nalezena")

// ErrNetwork obaluje selhání stažení stránky dodavatele.
var ErrNetwork = errors.New("stránku dodavatele se nepodařilo stáhnout")

// errNoDigits vrací parsování ceny bez jediné číslice. Nikdy se nemapuje
// na nulovou cenu.
var errNoDigits = errors.New("cena neobsahuje číslici")

// Config popisuje, kde a jak menu na stránce hledat. Dodavatel v minulosti
// měnil počet sloupců, proto se jméno a cena hledají podle indexu.
type Config struct {
	URL           string
	TargetPrice   int
	FetchTimeout  time.Duration
	NameColumn    int
	PriceColumn   int
	TableSelector string
}

// Fetcher stahuje a parsuje jídelníček z LunchDrive.
type Fetcher struct {
	cfg    Config
	client *http.Client
}

var _ domain.MenuSource = (*Fetcher)(nil)

// NewFetcher vytváří fetcher. Pokud není zadán selektor tabulky,
// použije se výchozí značkování LunchDrive.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.TableSelector == "" {
		cfg.TableSelector = "table.table-menu"
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// HeadingDate formátuje datum tak, jak ho dodavatel píše do nadpisu:
// den.měsíc.rok bez doplňování nul.
func HeadingDate(date time.Time) string {
	return fmt.Sprintf("%d.%d.%d", date.Day(), int(date.Month()), date.Year())
}

var (
	digitGapRe = regexp.MustCompile(`([0-9])[\s\x{00a0}\x{202f}]+([0-9])`)
	digitRunRe = regexp.MustCompile(`[0-9]+`)
)

// ParsePrice vytahuje z textu ceny první souvislou skupinu číslic.
// Mezery (včetně nezlomitelných) uvnitř čísla se nejprve slijí,
// měnové přípony a předpony se ignorují.
func ParsePrice(text string) (int, error) {
	collapsed := text
	for {
		next := digitGapRe.ReplaceAllString(collapsed, "$1$2")
		if next == collapsed {
			break
		}
		collapsed = next
	}
	run := digitRunRe.FindString(collapsed)
	if run == "" {
		return 0, errNoDigits
	}
	price, err := strconv.Atoi(run)
	if err != nil {
		return 0, errNoDigits
	}
	return price, nil
}

// FetchMenu stahuje stránku dodavatele a vrací jídla za cílovou cenu
// pro zadané datum. Prázdný výsledek je úspěch: v nabídce prostě nic
// za cílovou cenu není.
func (f *Fetcher) FetchMenu(ctx context.Context, date time.Time) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	metrics.ObserveNetworkRequest("lunchdrive", "fetch_page", "menu", start, err)
	if err != nil {
		metrics.ObserveMenuFetch("network_error")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveMenuFetch("network_error")
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.ObserveMenuFetch("parse_error")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	dishes, err := f.parseMenu(doc, date)
	switch {
	case errors.Is(err, ErrNotPublishedYet):
		metrics.ObserveMenuFetch("not_published")
	case errors.Is(err, ErrTableMissing):
		metrics.ObserveMenuFetch("table_missing")
	case err != nil:
		metrics.ObserveMenuFetch("parse_error")
	case len(dishes) == 0:
		metrics.ObserveMenuFetch("empty")
	default:
		metrics.ObserveMenuFetch("ok")
	}
	return dishes, err
}

func (f *Fetcher) parseMenu(doc *goquery.Document, date time.Time) ([]string, error) {
	needle := HeadingDate(date)

	var heading *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), needle) {
			heading = s
			return false
		}
		return true
	})
	if heading == nil {
		return nil, ErrNotPublishedYet
	}

	table := heading.NextAllFiltered(f.cfg.TableSelector).First()
	if table.Length() == 0 {
		return nil, ErrTableMissing
	}

	minColumns := f.cfg.NameColumn
	if f.cfg.PriceColumn > minColumns {
		minColumns = f.cfg.PriceColumn
	}
	minColumns++

	dishes := make([]string, 0)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < minColumns {
			return
		}
		name := strings.TrimSpace(cols.Eq(f.cfg.NameColumn).Text())
		if name == "" {
			return
		}
		price, err := ParsePrice(cols.Eq(f.cfg.PriceColumn).Text())
		if err != nil {
			return
		}
		if price != f.cfg.TargetPrice {
			return
		}
		dishes = append(dishes, name)
	})
	return dishes, nil
}
