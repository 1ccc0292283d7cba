package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"booking-scraper/models"
)

const hotelColumns = 11

// PostgresWriter persists cleaned hotels to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS hotels (
			id            SERIAL PRIMARY KEY,
			run_id        TEXT         NOT NULL,
			url           TEXT         UNIQUE NOT NULL,
			name          TEXT         NOT NULL DEFAULT '',
			address       TEXT         NOT NULL DEFAULT '',
			description   TEXT         NOT NULL DEFAULT '',
			review_score  NUMERIC(3,1) NOT NULL DEFAULT 0,
			total_reviews INTEGER      NOT NULL DEFAULT 0,
			check_in      TEXT         NOT NULL DEFAULT '',
			check_out     TEXT         NOT NULL DEFAULT '',
			image_urls    TEXT[]       NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_hotels_run_id       ON hotels(run_id);
		CREATE INDEX IF NOT EXISTS idx_hotels_review_score ON hotels(review_score);
	`)
	return err
}

// Write upserts all hotels in batches. A URL scraped again replaces the
// stored row.
func (pw *PostgresWriter) Write(hotels []*models.Hotel) error {
	const batchSize = 50
	for i := 0; i < len(hotels); i += batchSize {
		end := i + batchSize
		if end > len(hotels) {
			end = len(hotels)
		}
		query, args := upsertQuery(hotels[i:end])
		if _, err := pw.db.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: upsert batch %d: %w", i/batchSize, err)
		}
	}
	return nil
}

func upsertQuery(batch []*models.Hotel) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*hotelColumns)

	for idx, h := range batch {
		holders := make([]string, hotelColumns)
		for c := range holders {
			holders[c] = fmt.Sprintf("$%d", idx*hotelColumns+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")

		images := h.ImageURLs
		if images == nil {
			images = []string{}
		}
		valueArgs = append(valueArgs,
			h.RunID, h.URL, h.Name, h.Address, h.Description, h.ReviewScore,
			h.TotalReviews, h.CheckIn, h.CheckOut, pq.Array(images), h.CreatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO hotels (run_id, url, name, address, description, review_score,
			total_reviews, check_in, check_out, image_urls, created_at)
		VALUES %s
		ON CONFLICT (url) DO UPDATE SET
			run_id        = EXCLUDED.run_id,
			name          = EXCLUDED.name,
			address       = EXCLUDED.address,
			description   = EXCLUDED.description,
			review_score  = EXCLUDED.review_score,
			total_reviews = EXCLUDED.total_reviews,
			check_in      = EXCLUDED.check_in,
			check_out     = EXCLUDED.check_out,
			image_urls    = EXCLUDED.image_urls,
			created_at    = EXCLUDED.created_at
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchRun retrieves the hotels stored by one run, used by the insight
// service.
func (pw *PostgresWriter) FetchRun(runID string) ([]*models.Hotel, error) {
	rows, err := pw.db.Query(`
		SELECT id, run_id, url, name, address, description, review_score,
			total_reviews, check_in, check_out, image_urls, created_at
		FROM hotels
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run %s: %w", runID, err)
	}
	defer rows.Close()

	var hotels []*models.Hotel
	for rows.Next() {
		h := &models.Hotel{}
		if err := rows.Scan(
			&h.ID, &h.RunID, &h.URL, &h.Name, &h.Address, &h.Description,
			&h.ReviewScore, &h.TotalReviews, &h.CheckIn, &h.CheckOut,
			pq.Array(&h.ImageURLs), &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}
