package booking

// Image URL markers. Listing photos are served from the static CDN under
// the hotel image path.
const (
	staticHostMarker  = "bstatic.com"
	hotelImageSegment = "/images/hotel/"
)

// Search results page.
const (
	propertyCardSelector = `div[data-testid='property-card']`
	resultLinkSelector   = propertyCardSelector + ` h3 > a`
)

// Search bootstrap.
const (
	consentSelector          = `button[id^='onetrust-accept-btn-handler'], button[aria-label*='Accept']`
	searchInputSelector      = `input[name='ss']`
	calendarSelector         = `[data-testid='searchbox-datepicker-calendar']`
	dateDisplayStartSelector = `[data-testid='date-display-field-start']`
	nextMonthSelector        = `button[aria-label="Next month"]`
	altNextMonthSelector     = `button[aria-label*='Next']`
	submitSelector           = `button[data-testid='searchbox-submit-button'], button[type='submit']`
	filterLabelSelector      = `div[data-testid='filters-group-label-content']`
)

var calendarButtonSelectors = []string{
	`button[data-testid='searchbox-dates-container']`,
	`button[aria-controls='calendar-searchboxdatepicker']`,
}

// Listing page. Lists are ordered most specific first.
var (
	nameSelectors = []string{
		`h2.pp-header__title`,
		`h2.ddb12f4f86.pp-header__title`,
		`[data-testid='hp-hotel-name'] h2`,
		`header h2`,
	}

	addressSelectors = []string{
		`[data-testid='address']`,
		`span[data-node_tt_id='address']`,
		`[data-node_tt_id='address']`,
	}

	descriptionSelectors = []string{
		`p[data-testid='property-description']`,
		`[data-testid='property-description']`,
	}

	imageFallbackSelectors = []string{
		`img[src*='bstatic.com']`,
		`img[data-src*='bstatic.com']`,
		`figure img`,
	}

	galleryThumbSelectors = []string{
		`img.f6c12c77eb.c0e44985a8.c09abd8a52.ca3dad4476`,
		`[data-testid='image-gallery-scroll-container'] img`,
		`figure img`,
	}
)

const (
	addressStructuralSelector = `button.de576f5064 div.b99b6ef58f.cb4b7a25d9.b06461926f`

	scorecardSelector     = `#js--hp-gallery-scorecard`
	reviewSummarySelector = `[data-testid='review-score-right-component']`

	galleryItemSelector      = `button[data-testid^='gallery-grid-photo-action-']`
	galleryContainerSelector = `div.ff6e679a8f, div.f8e0b81a32`
	galleryCloseSelector     = `button[aria-label*='Close'], button[aria-label*='close']`
)

// House-rules block: a policy row holds a label and, beside it, the value.
const (
	policyRowSelector   = `div[class*='b0400e5749']`
	policyLabelSelector = `div[class*='e7addce19e']`
	policyValueSelector = `div[class*='c92998be48'] div[class*='b99b6ef58f']`
)

// Thumbnails whose src contains one of these are site chrome, not photos.
var thumbnailExclusions = []string{"images-flags", "design-assets", "transparent"}
