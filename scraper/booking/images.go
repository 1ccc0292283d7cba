package booking

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"booking-scraper/utils"
)

// galleryStallLimit is how many consecutive scrolls without new gallery
// items end collection.
const galleryStallLimit = 3

// Images returns the listing's photo URLs. Fast mode reads what the page
// renders after a couple of lazy-load scrolls; thorough mode opens the photo
// gallery and scrolls through it. Either falls back to a plain scan of image
// elements when it fails or finds nothing.
func (e *Extractor) Images(ctx context.Context, fast bool) []string {
	var urls []string
	if fast {
		got, err := e.fastImages(ctx)
		if err != nil {
			e.logger.Debug("[images] fast scan failed, falling back: %v", err)
			got = e.FindManySources(ctx, imageFallbackSelectors, e.opts.ImageLimit)
		}
		urls = got
	} else {
		urls = e.galleryImages(ctx)
		if len(urls) == 0 {
			e.logger.Debug("[images] gallery yielded nothing, falling back")
			urls = e.FindManySources(ctx, imageFallbackSelectors, e.opts.ImageLimit)
		}
	}
	return hotelImages(urls)
}

func (e *Extractor) fastImages(ctx context.Context) ([]string, error) {
	t := e.opts.Timings
	for i := 0; i < 2; i++ {
		if err := e.evaluate(ctx, scrollDownJS, nil); err != nil {
			return nil, err
		}
		if err := pause(ctx, t.LazyScrollDown); err != nil {
			return nil, err
		}
		if err := e.evaluate(ctx, scrollToTopJS, nil); err != nil {
			return nil, err
		}
		if err := pause(ctx, t.LazyScrollUp); err != nil {
			return nil, err
		}
	}

	var urls []string
	if err := e.evaluate(ctx, liveImagesJS, &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

func (e *Extractor) galleryImages(ctx context.Context) []string {
	clicked, opened := e.openGallery(ctx)
	if clicked {
		defer e.closeGallery(ctx)
	}
	if !opened {
		return nil
	}
	return e.collectGallery(ctx)
}

// openGallery clicks the second photo thumbnail (the first when only one
// exists). clicked reports whether a thumbnail was clicked, opened whether
// the gallery grid appeared.
func (e *Extractor) openGallery(ctx context.Context) (clicked, opened bool) {
	doc, err := e.snapshot(ctx)
	if err != nil {
		e.logger.Debug("[gallery] snapshot: %v", err)
		return false, false
	}

	type thumb struct {
		selector string
		index    int
	}
	var valid []thumb
	for _, sel := range galleryThumbSelectors {
		doc.Find(sel).Each(func(i int, s *goquery.Selection) {
			if isPhotoThumbnail(imageSource(s)) {
				valid = append(valid, thumb{selector: sel, index: i})
			}
		})
	}
	if len(valid) == 0 {
		return false, false
	}

	target := valid[0]
	if len(valid) >= 2 {
		target = valid[1]
	}
	if err := e.page.ClickNth(ctx, target.selector, target.index); err != nil {
		e.logger.Debug("[gallery] click thumbnail: %v", err)
		return false, false
	}

	if e.waitFor(ctx, galleryItemSelector, e.opts.Timings.GalleryOpen) == nil {
		return true, true
	}
	return true, e.waitFor(ctx, galleryItemSelector, e.opts.Timings.GalleryRetry) == nil
}

// collectGallery reads rendered gallery items, scrolling between reads,
// until the item count stalls or the scroll budget is spent.
func (e *Extractor) collectGallery(ctx context.Context) []string {
	urls := utils.NewLinkSet(0)
	lastCount := -1
	stalled := 0

	for attempt := 0; attempt < e.opts.MaxGalleryScrolls; attempt++ {
		doc, err := e.snapshot(ctx)
		if err != nil {
			e.logger.Debug("[gallery] snapshot: %v", err)
			break
		}

		items := doc.Find(galleryItemSelector)
		items.Each(func(_ int, b *goquery.Selection) {
			src := imageSource(b.Find("img").First())
			if strings.Contains(src, staticHostMarker) {
				urls.Add(src)
			}
		})

		if items.Length() == lastCount {
			stalled++
		} else {
			stalled = 0
		}
		lastCount = items.Length()
		if stalled >= galleryStallLimit {
			break
		}

		if err := e.evaluate(ctx, galleryScrollJS, nil); err != nil {
			e.logger.Debug("[gallery] scroll: %v", err)
			break
		}
		if pause(ctx, e.opts.Timings.GalleryScrollPause) != nil {
			break
		}
	}
	return urls.Items()
}

func (e *Extractor) closeGallery(ctx context.Context) {
	if doc, err := e.snapshot(ctx); err == nil && doc.Find(galleryCloseSelector).Length() > 0 {
		if err := e.page.ClickNth(ctx, galleryCloseSelector, 0); err == nil {
			return
		}
	}
	if err := e.page.PressEscape(ctx); err != nil {
		e.logger.Debug("[gallery] escape: %v", err)
	}
}

func (e *Extractor) waitFor(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.page.WaitPresent(waitCtx, selector)
}

func isPhotoThumbnail(src string) bool {
	src = strings.ToLower(src)
	if !strings.Contains(src, staticHostMarker) || !strings.Contains(src, hotelImageSegment) {
		return false
	}
	for _, x := range thumbnailExclusions {
		if strings.Contains(src, x) {
			return false
		}
	}
	return true
}

// hotelImages keeps CDN hotel photos only, deduplicated, in input order.
func hotelImages(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if !strings.Contains(u, staticHostMarker) || !strings.Contains(u, hotelImageSegment) {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
