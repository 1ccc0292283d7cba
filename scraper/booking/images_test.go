package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

const thumbSelector = `img.f6c12c77eb.c0e44985a8.c09abd8a52.ca3dad4476`

const thumbsHTML = `
<img class="f6c12c77eb c0e44985a8 c09abd8a52 ca3dad4476" src="https://cf.bstatic.com/static/img/flags/images-flags/pt.png">
<img class="f6c12c77eb c0e44985a8 c09abd8a52 ca3dad4476" src="https://cf.bstatic.com/xdata/images/hotel/max500/1.jpg">
<img class="f6c12c77eb c0e44985a8 c09abd8a52 ca3dad4476" src="https://cf.bstatic.com/xdata/images/hotel/max500/2.jpg">
`

// galleryPage renders gallery items that grow by step per scroll up to
// total. The grid appears once a thumbnail is clicked.
type galleryPage struct {
	*fakePage

	mu      sync.Mutex
	scrolls int
	opened  bool
}

func newGalleryPage(step, total int, closeButton bool) *galleryPage {
	g := &galleryPage{fakePage: newFakePage("")}
	g.html = func() string {
		g.mu.Lock()
		defer g.mu.Unlock()

		var b strings.Builder
		b.WriteString("<html><body>")
		b.WriteString(thumbsHTML)
		if g.opened {
			n := step * (g.scrolls + 1)
			if n > total {
				n = total
			}
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, `<button data-testid="gallery-grid-photo-action-%d"><img src="https://cf.bstatic.com/xdata/images/hotel/max1024/g%d.jpg"></button>`, i, i)
			}
			if closeButton {
				b.WriteString(`<button aria-label="Close">x</button>`)
			}
		}
		b.WriteString("</body></html>")
		return b.String()
	}
	g.evaluate = func(script string, res any) error {
		if isScript(script, "clientHeight") {
			g.mu.Lock()
			g.scrolls++
			g.mu.Unlock()
		}
		return setResult(res, true)
	}
	g.onClick = func(selector string, n int) error {
		if selector == thumbSelector {
			g.mu.Lock()
			g.opened = true
			g.mu.Unlock()
			g.fakePage.mu.Lock()
			g.present[galleryItemSelector] = true
			g.fakePage.mu.Unlock()
		}
		return nil
	}
	return g
}

func (g *galleryPage) scrollCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scrolls
}

func TestGalleryStopsWhenItemsStall(t *testing.T) {
	page := newGalleryPage(4, 12, true)
	ex := newTestExtractor(page.fakePage)

	got := ex.Images(context.Background(), false)
	if len(got) != 12 {
		t.Fatalf("expected 12 gallery images, got %d: %v", len(got), got)
	}
	for i, u := range got {
		want := fmt.Sprintf("https://cf.bstatic.com/xdata/images/hotel/max1024/g%d.jpg", i)
		if u != want {
			t.Errorf("image %d: got %s, want %s", i, u, want)
		}
	}
	// 4, 8, 12, then three unchanged reads
	if n := page.scrollCount(); n != 5 {
		t.Errorf("expected 5 gallery scrolls, got %d", n)
	}
}

func TestGalleryClicksSecondValidThumbnail(t *testing.T) {
	page := newGalleryPage(4, 4, true)
	newTestExtractor(page.fakePage).Images(context.Background(), false)

	clicks := page.clicked()
	if len(clicks) == 0 {
		t.Fatal("expected a thumbnail click")
	}
	if want := thumbSelector + "[2]"; clicks[0] != want {
		t.Errorf("first click: got %s, want %s", clicks[0], want)
	}
	if last := clicks[len(clicks)-1]; last != galleryCloseSelector+"[0]" {
		t.Errorf("expected gallery closed via close button, last click %s", last)
	}
	if page.escapes != 0 {
		t.Errorf("expected no escape presses, got %d", page.escapes)
	}
}

func TestGalleryClosesWithEscapeWithoutButton(t *testing.T) {
	page := newGalleryPage(4, 4, false)
	got := newTestExtractor(page.fakePage).Images(context.Background(), false)

	if len(got) != 4 {
		t.Errorf("expected 4 images, got %d", len(got))
	}
	if page.escapes != 1 {
		t.Errorf("expected one escape press, got %d", page.escapes)
	}
}

func TestGalleryHonoursScrollBudget(t *testing.T) {
	page := newGalleryPage(1, 1000, true)
	ex := newTestExtractor(page.fakePage)
	ex.opts.MaxGalleryScrolls = 20

	got := ex.Images(context.Background(), false)
	if len(got) != 20 {
		t.Errorf("expected 20 images within the scroll budget, got %d", len(got))
	}
	if n := page.scrollCount(); n != 20 {
		t.Errorf("expected 20 scrolls, got %d", n)
	}
}

func TestGalleryFallsBackWhenGridNeverOpens(t *testing.T) {
	page := newFakePage("<html><body>" + thumbsHTML + "</body></html>")
	got := newTestExtractor(page).Images(context.Background(), false)

	want := []string{
		"https://cf.bstatic.com/xdata/images/hotel/max500/1.jpg",
		"https://cf.bstatic.com/xdata/images/hotel/max500/2.jpg",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if page.escapes != 1 {
		t.Errorf("expected the clicked thumbnail to be dismissed, escapes=%d", page.escapes)
	}
}

func TestGalleryWithoutThumbnails(t *testing.T) {
	page := newFakePage(`<html><body><img src="https://example.com/a.jpg"></body></html>`)
	got := newTestExtractor(page).Images(context.Background(), false)

	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
	if len(page.clicked()) != 0 || page.escapes != 0 {
		t.Error("expected no interaction without thumbnails")
	}
}

func TestFastImagesFiltersLiveSources(t *testing.T) {
	page := newFakePage("<html></html>")
	var scrolls int
	page.evaluate = func(script string, res any) error {
		if isScript(script, "picture source") {
			return setResult(res, []string{
				"https://cf.bstatic.com/xdata/images/hotel/max500/1.jpg",
				"https://cf.bstatic.com/static/img/design-assets/logo.png",
				"https://cf.bstatic.com/xdata/images/hotel/max500/1.jpg",
				"https://cf.bstatic.com/xdata/images/hotel/max500/3.jpg",
			})
		}
		scrolls++
		return nil
	}

	got := newTestExtractor(page).Images(context.Background(), true)
	want := []string{
		"https://cf.bstatic.com/xdata/images/hotel/max500/1.jpg",
		"https://cf.bstatic.com/xdata/images/hotel/max500/3.jpg",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if scrolls != 4 {
		t.Errorf("expected two down/up scroll cycles, got %d scripts", scrolls)
	}
}

func TestFastImagesFallsBackOnScriptError(t *testing.T) {
	page := newFakePage(`<html><body>
		<img src="https://cf.bstatic.com/xdata/images/hotel/max500/9.jpg">
		<img src="https://cf.bstatic.com/static/img/design-assets/logo.png">
	</body></html>`)
	page.evaluate = func(script string, res any) error {
		return errors.New("execution context was destroyed")
	}

	got := newTestExtractor(page).Images(context.Background(), true)
	want := []string{"https://cf.bstatic.com/xdata/images/hotel/max500/9.jpg"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHotelImages(t *testing.T) {
	got := hotelImages([]string{
		"https://cf.bstatic.com/xdata/images/hotel/a.jpg",
		"https://example.com/images/hotel/b.jpg",
		"https://cf.bstatic.com/static/img/c.png",
		"https://cf.bstatic.com/xdata/images/hotel/a.jpg",
	})
	if len(got) != 1 || got[0] != "https://cf.bstatic.com/xdata/images/hotel/a.jpg" {
		t.Errorf("got %v", got)
	}
	if got := hotelImages(nil); got == nil {
		t.Error("expected non-nil result for nil input")
	}
}

func TestIsPhotoThumbnail(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"https://cf.bstatic.com/xdata/images/hotel/max500/1.jpg", true},
		{"https://cf.bstatic.com/static/img/flags/images-flags/pt.png", false},
		{"https://cf.bstatic.com/xdata/images/hotel/transparent.gif", false},
		{"https://example.com/images/hotel/1.jpg", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isPhotoThumbnail(tt.src); got != tt.want {
			t.Errorf("isPhotoThumbnail(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
