package booking

import (
	"fmt"

	"booking-scraper/browser"
)

const (
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight)`
	scrollDownJS     = `window.scrollBy(0, document.body.scrollHeight)`
	scrollToTopJS    = `window.scrollTo(0, 0)`
)

// resultLinksJS returns the absolute hrefs of every rendered result card.
var resultLinksJS = fmt.Sprintf(`
	Array.from(document.querySelectorAll(%s))
		.map(function(a) { return a.href || ''; })
		.filter(function(h) { return h.length > 0; })
`, browser.JSString(resultLinkSelector))

// liveImagesJS collects CDN image URLs from img elements and picture sources.
var liveImagesJS = fmt.Sprintf(`
	(function() {
		var marker = %s;
		var out = [];
		var seen = {};
		function add(u) {
			if (u && u.indexOf(marker) !== -1 && !seen[u]) {
				seen[u] = true;
				out.push(u);
			}
		}
		var imgs = document.querySelectorAll('img');
		for (var i = 0; i < imgs.length; i++) {
			add(imgs[i].getAttribute('src') || imgs[i].getAttribute('data-src'));
		}
		var sources = document.querySelectorAll('picture source');
		for (var j = 0; j < sources.length; j++) {
			var srcset = sources[j].getAttribute('srcset') || '';
			srcset.split(',').forEach(function(chunk) {
				add(chunk.trim().split(' ')[0]);
			});
		}
		return out;
	})()
`, browser.JSString(staticHostMarker))

// galleryScrollJS advances the gallery grid by one viewport, or the window
// when the grid container is not present.
var galleryScrollJS = fmt.Sprintf(`
	(function() {
		var grid = document.querySelector(%s);
		if (grid) {
			grid.scrollTop = grid.scrollTop + grid.clientHeight;
			return true;
		}
		window.scrollBy(0, Math.min(800, window.innerHeight));
		return false;
	})()
`, browser.JSString(galleryContainerSelector))

// clickStartDateButtonJS clicks the button wrapping the start-date display.
var clickStartDateButtonJS = fmt.Sprintf(`
	(function() {
		var display = document.querySelector(%s);
		if (!display) return false;
		var btn = display.closest('button');
		if (!btn) return false;
		btn.click();
		return true;
	})()
`, browser.JSString(dateDisplayStartSelector))

// clickFilterJS clicks the filter label whose text equals label exactly.
func clickFilterJS(label string) string {
	return fmt.Sprintf(`
	(function(label) {
		var nodes = document.querySelectorAll(%s);
		for (var i = 0; i < nodes.length; i++) {
			if ((nodes[i].textContent || '').trim() !== label) continue;
			var holder = nodes[i].closest('label');
			if (holder) {
				holder.click();
				return true;
			}
		}
		return false;
	})(%s)
`, browser.JSString(filterLabelSelector), browser.JSString(label))
}
