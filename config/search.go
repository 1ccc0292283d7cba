package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"booking-scraper/models"
)

const (
	defaultMaxItems   = 10
	defaultFastImages = true
)

// searchFile mirrors input.json. Optional keys are pointers so that an
// absent key can be told apart from an explicit zero value.
type searchFile struct {
	Currency     string `json:"currency"`
	Search       string `json:"search"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	PropertyType string `json:"propertyType"`
	MaxItems     *int   `json:"maxitems"`
	FastImages   *bool  `json:"fast_images"`
}

// LoadSearchRequest reads and validates the JSON search request at path.
func LoadSearchRequest(path string) (*models.SearchRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return ParseSearchRequest(raw)
}

// ParseSearchRequest decodes a search request and applies defaults.
func ParseSearchRequest(raw []byte) (*models.SearchRequest, error) {
	var in searchFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("config: decode search request: %w", err)
	}

	req := &models.SearchRequest{
		Currency:     strings.TrimSpace(in.Currency),
		Search:       strings.TrimSpace(in.Search),
		CheckIn:      strings.TrimSpace(in.CheckIn),
		CheckOut:     strings.TrimSpace(in.CheckOut),
		PropertyType: strings.TrimSpace(in.PropertyType),
		MaxItems:     defaultMaxItems,
		FastImages:   defaultFastImages,
	}
	if in.MaxItems != nil {
		req.MaxItems = *in.MaxItems
	}
	if in.FastImages != nil {
		req.FastImages = *in.FastImages
	}

	required := []struct {
		key, val string
	}{
		{"currency", req.Currency},
		{"search", req.Search},
		{"check_in", req.CheckIn},
		{"check_out", req.CheckOut},
		{"propertyType", req.PropertyType},
	}
	for _, r := range required {
		if r.val == "" {
			return nil, fmt.Errorf("config: search request: %q is required", r.key)
		}
	}
	if req.MaxItems < 1 {
		return nil, fmt.Errorf("config: search request: maxitems must be positive, got %d", req.MaxItems)
	}
	return req, nil
}
