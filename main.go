package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"booking-scraper/browser"
	"booking-scraper/config"
	"booking-scraper/models"
	"booking-scraper/scraper/booking"
	"booking-scraper/services"
	"booking-scraper/storage"
	"booking-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)

	req, err := config.LoadSearchRequest(cfg.InputPath)
	if err != nil {
		logger.Error("Failed to load search input: %v", err)
		os.Exit(1)
	}

	logger.Info("=== Booking Scraping System starting ===")
	logger.Info("Config: listings: %d | concurrency: %d | attempts: %d | rate: %dms | fast images: %v",
		req.MaxItems, cfg.MaxConcurrency, cfg.ListingMaxAttempts, cfg.RateLimitMs, req.FastImages)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	launcher := browser.NewLauncher(ctx, browser.Options{
		Headless:  cfg.Headless,
		ChromeBin: cfg.ChromeBin,
	})
	defer launcher.Close()
	if bin := launcher.Binary(); bin != "" {
		logger.Info("Using browser at %s", bin)
	}

	driver := booking.NewDriver(launcher, booking.NewOptions(cfg), logger)
	rs, err := driver.Run(ctx, req)
	if err != nil {
		logger.Error("Search setup failed: %v", err)
		os.Exit(1)
	}
	if cfg.SortOutput {
		rs.SortByInput(rs.URLs)
	}

	writers := []storage.RecordWriter{storage.NewJSONWriter(cfg.OutputPath)}
	if cfg.CSVOutputPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			writers = append(writers, csvWriter)
		}
	}
	writeRecords(logger, writers, rs.Records)

	for _, f := range rs.Failures {
		logger.Warn("Not scraped: %s (%s)", f.URL, f.Error)
	}

	cleaner := services.NewCleaner(logger)
	hotels := cleaner.Clean(rs.RunID, rs.Records)

	if cfg.PostgresEnabled {
		hotels = persistHotels(logger, cfg, rs.RunID, hotels)
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(rs.RunID, hotels, len(rs.Failures))
	insightSvc.Print(report)

	fmt.Printf("  Done. %d hotels → %s\n\n", len(rs.Records), cfg.OutputPath)
}

func writeRecords(logger *utils.Logger, writers []storage.RecordWriter, records []*models.HotelRecord) {
	for _, w := range writers {
		if err := w.WriteRecords(records); err != nil {
			logger.Error("Write failed: %v", err)
		}
		if err := w.Close(); err != nil {
			logger.Error("Close failed: %v", err)
		}
	}
	logger.Info("Saved %d records", len(records))
}

// persistHotels stores hotels in PostgreSQL and returns the run as read
// back from the database, or hotels unchanged when the database is
// unavailable.
func persistHotels(logger *utils.Logger, cfg *config.Config, runID string, hotels []*models.Hotel) []*models.Hotel {
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return hotels
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(hotels); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return hotels
	}
	logger.Info("Hotels stored in PostgreSQL (table: hotels, run %s)", runID)

	stored, err := pgWriter.FetchRun(runID)
	if err != nil {
		logger.Error("Failed to fetch run from DB for insights: %v", err)
		return hotels
	}
	return stored
}
