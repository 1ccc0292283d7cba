package models

import (
	"sort"
	"time"
)

// SearchRequest is the run input loaded from input.json.
type SearchRequest struct {
	Currency     string
	Search       string
	CheckIn      string
	CheckOut     string
	PropertyType string
	MaxItems     int
	FastImages   bool
}

// HotelRecord holds the best-effort fields scraped from one listing page.
// Only URL is guaranteed; every other pointer is nil when the page did not
// expose the value.
type HotelRecord struct {
	URL          string   `json:"url"`
	HotelName    *string  `json:"hotel_name"`
	Address      *string  `json:"address"`
	ImageURLs    []string `json:"image_urls"`
	Description  *string  `json:"description"`
	ReviewScore  *string  `json:"review_score"`
	TotalReviews *string  `json:"total_reviews"`
	CheckIn      *string  `json:"check_in"`
	CheckOut     *string  `json:"check_out"`
}

// ScrapeFailure records a listing URL whose scrape did not produce a record.
type ScrapeFailure struct {
	URL   string
	Error string
}

// ResultSet is the outcome of dispatching a batch of listing URLs.
// Records are appended in completion order, not submission order.
type ResultSet struct {
	RunID    string
	URLs     []string // collected listing URLs, in collection order
	Records  []*HotelRecord
	Failures []ScrapeFailure
}

// SortByInput reorders Records to follow the order of urls. Records whose
// URL is not in urls keep their relative order at the end.
func (rs *ResultSet) SortByInput(urls []string) {
	pos := make(map[string]int, len(urls))
	for i, u := range urls {
		pos[u] = i
	}
	rank := func(r *HotelRecord) int {
		if p, ok := pos[r.URL]; ok {
			return p
		}
		return len(urls)
	}
	sort.SliceStable(rs.Records, func(i, j int) bool {
		return rank(rs.Records[i]) < rank(rs.Records[j])
	})
}

// Hotel is the cleaned, typed record ready for PostgreSQL storage.
type Hotel struct {
	ID           int64
	RunID        string
	URL          string
	Name         string
	Address      string
	Description  string
	ReviewScore  float64
	TotalReviews int
	CheckIn      string
	CheckOut     string
	ImageURLs    []string
	CreatedAt    time.Time
}

// InsightReport holds the computed summary over one run.
type InsightReport struct {
	RunID          string
	TotalHotels    int
	FailedListings int
	RatedHotels    int
	AverageScore   float64
	TotalImages    int
	WithoutImages  int
	TopRated       []*Hotel
	MostReviewed   *Hotel
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional field, returning "" for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
