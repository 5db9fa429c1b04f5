package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vigiasalud/alert-ingestor/internal/models"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "alert-ingestor/1.0"
)

// Selectors holds the CSS selectors used to extract records from a listing
// page. Item scopes one record; the remaining selectors are evaluated inside
// each item. Empty selectors are skipped.
type Selectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	Date        string `yaml:"date"`
}

// HTMLConfig describes a selector-driven source. Sources whose markup cannot
// be expressed with selectors implement Collector directly instead.
type HTMLConfig struct {
	Name        string    `yaml:"name"`
	URL         string    `yaml:"url"`
	SourceType  string    `yaml:"source_type"`
	Category    string    `yaml:"category"`
	Country     string    `yaml:"country"`
	Institution string    `yaml:"institution"`
	Selectors   Selectors `yaml:"selectors"`
	DateLayouts []string  `yaml:"date_layouts"`
}

// HTMLCollector fetches a listing page and extracts one raw record per item
// selector match.
type HTMLCollector struct {
	cfg    HTMLConfig
	client *http.Client
}

// NewHTMLCollector creates a collector for the given source definition.
func NewHTMLCollector(cfg HTMLConfig) *HTMLCollector {
	return &HTMLCollector{
		cfg: cfg,
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

func (c *HTMLCollector) Name() string {
	return c.cfg.Name
}

// Collect fetches the configured URL and extracts raw records. A page with no
// item matches yields an empty slice.
func (c *HTMLCollector) Collect(ctx context.Context) ([]models.RawRecord, error) {
	base, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var records []models.RawRecord
	doc.Find(c.cfg.Selectors.Item).Each(func(_ int, item *goquery.Selection) {
		records = append(records, c.extractRecord(base, item))
	})

	return records, nil
}

func (c *HTMLCollector) extractRecord(base *url.URL, item *goquery.Selection) models.RawRecord {
	record := models.RawRecord{
		"source_type": c.cfg.SourceType,
		"category":    c.cfg.Category,
		"country":     c.cfg.Country,
	}
	if c.cfg.Institution != "" {
		record["institution"] = c.cfg.Institution
	}

	if c.cfg.Selectors.Title != "" {
		record["title"] = text(item, c.cfg.Selectors.Title)
	}
	if c.cfg.Selectors.Description != "" {
		record["description"] = text(item, c.cfg.Selectors.Description)
	}
	if c.cfg.Selectors.Link != "" {
		if href := c.resolveLink(base, item); href != "" {
			record["source_url"] = href
		}
	}
	if c.cfg.Selectors.Date != "" {
		if parsed, ok := c.parseDate(text(item, c.cfg.Selectors.Date)); ok {
			record["presentation_date"] = parsed
		}
	}

	return record
}

func (c *HTMLCollector) resolveLink(base *url.URL, item *goquery.Selection) string {
	sel := item.Find(c.cfg.Selectors.Link)
	href, exists := sel.Attr("href")
	if !exists || href == "" {
		return ""
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func (c *HTMLCollector) parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range c.cfg.DateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func text(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}
