package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"booking-scraper/models"
	"booking-scraper/utils"
)

// topRatedCount is how many hotels the report ranks.
const topRatedCount = 5

var (
	headerColor = color.New(color.FgMagenta, color.Bold)
	titleColor  = color.New(color.FgYellow, color.Bold)
	valueColor  = color.New(color.Bold)
	scoreColor  = color.New(color.FgGreen, color.Bold)
	failColor   = color.New(color.FgRed, color.Bold)
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises one run. failed is the number of listing URLs that
// produced no record.
func (s *InsightService) Generate(runID string, hotels []*models.Hotel, failed int) *models.InsightReport {
	report := &models.InsightReport{
		RunID:          runID,
		FailedListings: failed,
	}

	if len(hotels) == 0 {
		return report
	}

	report.TotalHotels = len(hotels)

	var rated []*models.Hotel
	var scoreTotal float64
	for _, h := range hotels {
		report.TotalImages += len(h.ImageURLs)
		if len(h.ImageURLs) == 0 {
			report.WithoutImages++
		}
		if h.ReviewScore > 0 {
			rated = append(rated, h)
			scoreTotal += h.ReviewScore
		}
		if h.TotalReviews > 0 && (report.MostReviewed == nil || h.TotalReviews > report.MostReviewed.TotalReviews) {
			report.MostReviewed = h
		}
	}

	report.RatedHotels = len(rated)
	if len(rated) > 0 {
		report.AverageScore = round2(scoreTotal / float64(len(rated)))
	}

	// Ties rank by review count.
	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].ReviewScore != rated[j].ReviewScore {
			return rated[i].ReviewScore > rated[j].ReviewScore
		}
		return rated[i].TotalReviews > rated[j].TotalReviews
	})
	if len(rated) > topRatedCount {
		report.TopRated = rated[:topRatedCount]
	} else {
		report.TopRated = rated
	}

	s.logger.Debug("[insights] %d hotels, %d rated, %d failed", report.TotalHotels, report.RatedHotels, failed)
	return report
}

// Print writes the report to stdout.
func (s *InsightService) Print(r *models.InsightReport) {
	s.Fprint(os.Stdout, r)
}

// Fprint writes the report to w.
func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	headerColor.Fprintf(w, "\n%s\n", sep)
	headerColor.Fprintf(w, "  BOOKING SCRAPE INSIGHTS\n")
	headerColor.Fprintf(w, "%s\n\n", sep)

	titleColor.Fprintf(w, "  Overview\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Run id                 : %s\n", r.RunID)
	fmt.Fprintf(w, "  Hotels scraped         : %s\n", valueColor.Sprint(r.TotalHotels))
	if r.FailedListings > 0 {
		fmt.Fprintf(w, "  Failed listings        : %s\n", failColor.Sprint(r.FailedListings))
	} else {
		fmt.Fprintf(w, "  Failed listings        : %s\n", valueColor.Sprint(0))
	}
	fmt.Fprintf(w, "  Images collected       : %s\n", valueColor.Sprint(r.TotalImages))
	fmt.Fprintf(w, "  Hotels without images  : %s\n", valueColor.Sprint(r.WithoutImages))
	fmt.Fprintln(w)

	titleColor.Fprintf(w, "  Review Scores\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.RatedHotels > 0 {
		fmt.Fprintf(w, "  Rated hotels  : %s\n", valueColor.Sprint(r.RatedHotels))
		fmt.Fprintf(w, "  Average score : %s\n", scoreColor.Sprintf("%.2f", r.AverageScore))
	} else {
		fmt.Fprintf(w, "  No review data available\n")
	}
	fmt.Fprintln(w)

	if r.MostReviewed != nil {
		titleColor.Fprintf(w, "  Most Reviewed Hotel\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(displayName(r.MostReviewed), 50))
		fmt.Fprintf(w, "  Reviews : %s\n", valueColor.Sprint(r.MostReviewed.TotalReviews))
		fmt.Fprintln(w)
	}

	titleColor.Fprintf(w, "  Top %d Highest Rated Hotels\n", topRatedCount)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated hotels found\n")
	} else {
		for i, h := range r.TopRated {
			fmt.Fprintf(w, "  %d. %-40s %s\n",
				i+1, truncate(displayName(h), 38), scoreColor.Sprintf("%.1f", h.ReviewScore))
		}
	}

	headerColor.Fprintf(w, "\n%s\n\n", sep)
}

func displayName(h *models.Hotel) string {
	if h.Name != "" {
		return h.Name
	}
	return h.URL
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
