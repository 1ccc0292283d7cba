package booking

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"booking-scraper/browser"
	"booking-scraper/utils"
)

var (
	// scoreRegexp captures the first decimal number of a review summary.
	scoreRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	// reviewCountRegexp captures "1,204 reviews" style counts.
	reviewCountRegexp = regexp.MustCompile(`(?i)([\d,]+)\s+reviews`)
)

// Extractor pulls individual fields out of one loaded listing page. It
// holds no state beyond the page it reads; each lookup is independent and
// absorbs its own failures.
type Extractor struct {
	page   browser.Page
	opts   Options
	logger *utils.Logger
}

// NewExtractor binds an Extractor to a loaded page.
func NewExtractor(page browser.Page, opts Options, logger *utils.Logger) *Extractor {
	return &Extractor{page: page, opts: opts, logger: logger}
}

// FirstText returns the trimmed text of the first selector that matches
// an element with non-empty text within the per-attempt wait.
func (e *Extractor) FirstText(ctx context.Context, selectors []string) (string, bool) {
	return FirstOf(ctx, e.textStrategies(selectors)...)
}

func (e *Extractor) textStrategies(selectors []string) []Strategy {
	strategies := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		strategies = append(strategies, e.textStrategy(sel))
	}
	return strategies
}

func (e *Extractor) textStrategy(selector string) Strategy {
	return func(ctx context.Context) (string, bool) {
		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.Timings.SelectorWait)
		defer cancel()

		text, err := e.page.WaitText(attemptCtx, selector)
		if err != nil {
			e.logger.Debug("[extract] %s: %v", selector, err)
			return "", false
		}
		text = strings.TrimSpace(text)
		return text, text != ""
	}
}

// FindManySources collects CDN image URLs from the src (or data-src) of
// every element matched by selectors, in selector order, without
// duplicates and at most limit of them.
func (e *Extractor) FindManySources(ctx context.Context, selectors []string, limit int) []string {
	urls := make([]string, 0)
	if limit <= 0 {
		limit = e.opts.ImageLimit
	}

	doc, err := e.snapshot(ctx)
	if err != nil {
		e.logger.Debug("[extract] image sources: %v", err)
		return urls
	}

	seen := utils.NewLinkSet(limit)
	for _, sel := range selectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := imageSource(s)
			if strings.Contains(src, staticHostMarker) {
				seen.Add(src)
			}
			return !seen.Full()
		})
		if seen.Full() {
			break
		}
	}
	return append(urls, seen.Items()...)
}

// Address returns the first line of the property address.
func (e *Extractor) Address(ctx context.Context) (string, bool) {
	strategies := e.textStrategies(addressSelectors)
	strategies = append(strategies, e.textStrategy(addressStructuralSelector))

	raw, ok := FirstOf(ctx, strategies...)
	if !ok {
		return "", false
	}
	line := firstLine(raw)
	return line, line != ""
}

// TimeFor returns the value shown beside the house-rules label whose text
// is exactly label, e.g. "Check-in".
func (e *Extractor) TimeFor(ctx context.Context, label string) (string, bool) {
	doc, err := e.snapshot(ctx)
	if err != nil {
		e.logger.Debug("[extract] time for %q: %v", label, err)
		return "", false
	}

	var value string
	doc.Find(policyRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !hasLabel(row, label) {
			return true
		}
		if v := row.Find(policyValueSelector).First(); v.Length() > 0 {
			value = renderedText(v)
			return false
		}
		return true
	})
	return value, value != ""
}

// ReviewInfo returns the review score and total review count, each empty
// when the page does not show it.
func (e *Extractor) ReviewInfo(ctx context.Context) (score, total string) {
	doc, err := e.snapshot(ctx)
	if err != nil {
		e.logger.Debug("[extract] review info: %v", err)
		return "", ""
	}

	if v, ok := doc.Find(scorecardSelector).First().Attr("data-review-score"); ok {
		score = strings.TrimSpace(v)
	}

	if comp := doc.Find(reviewSummarySelector).First(); comp.Length() > 0 {
		s, t := parseReviewSummary(renderedText(comp))
		if score == "" {
			score = s
		}
		total = t
	}

	if total == "" {
		total = scanReviewCount(doc)
	}
	return score, total
}

// parseReviewSummary extracts the score and review count from a summary
// such as "8.7 Excellent · 1,204 reviews".
func parseReviewSummary(text string) (score, total string) {
	if m := scoreRegexp.FindStringSubmatch(text); m != nil {
		score = m[1]
	}
	if m := reviewCountRegexp.FindStringSubmatch(text); m != nil {
		total = m[1]
	}
	return score, total
}

// scanReviewCount returns the count from the first element whose own text
// mentions reviews and whose full text matches the count pattern.
func scanReviewCount(doc *goquery.Document) string {
	var total string
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(ownText(s)), "reviews") {
			return true
		}
		if m := reviewCountRegexp.FindStringSubmatch(renderedText(s)); m != nil {
			total = m[1]
			return false
		}
		return true
	})
	return total
}

func (e *Extractor) snapshot(ctx context.Context) (*goquery.Document, error) {
	snapCtx, cancel := context.WithTimeout(ctx, e.opts.Timings.Script)
	defer cancel()

	html, err := e.page.HTML(snapCtx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (e *Extractor) evaluate(ctx context.Context, script string, res any) error {
	evalCtx, cancel := context.WithTimeout(ctx, e.opts.Timings.Script)
	defer cancel()
	return e.page.Evaluate(evalCtx, script, res)
}

func imageSource(s *goquery.Selection) string {
	if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(s.AttrOr("data-src", ""))
}

func hasLabel(row *goquery.Selection, label string) bool {
	found := false
	row.Find(policyLabelSelector).EachWithBreak(func(_ int, l *goquery.Selection) bool {
		found = collapseSpace(ownText(l)) == label
		return !found
	})
	return found
}

// ownText concatenates the element's direct text children.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}

// renderedText joins every descendant text node with single spaces, which
// approximates how the browser renders block-separated text.
func renderedText(s *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
			case "script", "style", "#comment":
			default:
				walk(c)
			}
		})
	}
	walk(s)
	return collapseSpace(strings.Join(parts, " "))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
