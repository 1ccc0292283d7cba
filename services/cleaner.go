package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"booking-scraper/models"
	"booking-scraper/utils"
)

var (
	// scoreRegexp captures a decimal review score such as "8.7" or "8,7".
	scoreRegexp = regexp.MustCompile(`(\d{1,2}(?:[.,]\d{1,2})?)`)
	// countRegexp captures a review count with optional thousands separators.
	countRegexp = regexp.MustCompile(`\d[\d,. ]*`)
)

// maxReviewScore is the top of the review scale.
const maxReviewScore = 10

// Cleaner transforms scraped HotelRecords into typed Hotels.
type Cleaner struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger, now: time.Now}
}

// Clean converts records into hotels stamped with runID. Records without a
// URL and repeated URLs are dropped.
func (c *Cleaner) Clean(runID string, records []*models.HotelRecord) []*models.Hotel {
	seen := make(map[string]struct{})
	result := make([]*models.Hotel, 0, len(records))
	createdAt := c.now()

	for _, r := range records {
		if r == nil {
			continue
		}
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping record with empty URL: %s", models.Value(r.HotelName))
			continue
		}

		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		images := make([]string, 0, len(r.ImageURLs))
		images = append(images, r.ImageURLs...)

		result = append(result, &models.Hotel{
			RunID:        runID,
			URL:          url,
			Name:         normaliseText(models.Value(r.HotelName)),
			Address:      normaliseText(models.Value(r.Address)),
			Description:  normaliseText(models.Value(r.Description)),
			ReviewScore:  c.parseScore(models.Value(r.ReviewScore)),
			TotalReviews: c.parseCount(models.Value(r.TotalReviews)),
			CheckIn:      normaliseText(models.Value(r.CheckIn)),
			CheckOut:     normaliseText(models.Value(r.CheckOut)),
			ImageURLs:    images,
			CreatedAt:    createdAt,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d hotels (dropped %d)",
		len(records), len(result), len(records)-len(result))
	return result
}

// parseScore extracts a 0–10 review score. Decimal commas are accepted.
func (c *Cleaner) parseScore(raw string) float64 {
	match := scoreRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	val, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	if val < 0 || val > maxReviewScore {
		c.logger.Debug("[cleaner] Score out of range: %q", raw)
		return 0
	}
	return val
}

// parseCount extracts a review count, ignoring thousands separators.
// Examples:
//
//	"1,204"        → 1204
//	"2.310 reviews" → 2310
func (c *Cleaner) parseCount(raw string) int {
	match := countRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, match)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
