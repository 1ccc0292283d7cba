package storage

import "booking-scraper/models"

// RecordWriter is the interface for persisting scraped records as they
// come out of the driver.
type RecordWriter interface {
	WriteRecords(records []*models.HotelRecord) error
	Close() error
}

// HotelWriter is the interface any storage backend for cleaned hotels
// must satisfy.
type HotelWriter interface {
	Write(hotels []*models.Hotel) error
	Close() error
}
