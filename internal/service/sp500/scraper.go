package sp500

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	xhttp "FinCast/pkg/http"

	"github.com/PuerkitoBio/goquery"
)

const DefaultURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Scraper reads the S&P 500 constituents table from Wikipedia.
type Scraper struct {
	url  string
	http *xhttp.Client
}

func NewScraper(url string, h *xhttp.Client) *Scraper {
	if url == "" {
		url = DefaultURL
	}
	if h == nil {
		h = xhttp.NewClient(xhttp.WithTimeout(30*time.Second), xhttp.WithUserAgent("FinCast/1.0"))
	}
	return &Scraper{url: url, http: h}
}

// Constituents downloads and parses the constituents table.
func (s *Scraper) Constituents(ctx context.Context) ([]models.Constituent, error) {
	var body []byte
	if err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: s.url}, &body); err != nil {
		return nil, fmt.Errorf("sp500 download: %w", err)
	}
	return Parse(bytes.NewReader(body))
}

// Parse extracts constituents from the Wikipedia page HTML.
// Rows need at least three cells; sector is the fourth cell or "Unknown".
func Parse(r io.Reader) ([]models.Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("sp500 parse: %w", err)
	}
	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		table = doc.Find("table.wikitable.sortable").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("sp500 parse: constituents table: %w", models.ErrNoData)
	}

	var out []models.Constituent
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		c := models.Constituent{
			Symbol: strings.TrimSpace(cells.Eq(0).Text()),
			Name:   strings.TrimSpace(cells.Eq(1).Text()),
			Sector: "Unknown",
		}
		if cells.Length() > 3 {
			c.Sector = strings.TrimSpace(cells.Eq(3).Text())
		}
		out = append(out, c)
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("sp500 parse: %w", models.ErrNoData)
	}
	return out, nil
}

// Symbols returns the tickers of cs in table order.
func Symbols(cs []models.Constituent) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Symbol)
	}
	return out
}

var _ drepo.ConstituentSource = (*Scraper)(nil)
