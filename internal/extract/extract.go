package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// NoContentMessage is what Page.Text renders for a page that was fetched but
// had neither a title nor any non-empty paragraph.
const NoContentMessage = "No meaningful text found on the page."

// Status tags the outcome of an extraction.
type Status int

const (
	StatusOK Status = iota
	// StatusFetchFailed means the page could not be retrieved at all.
	StatusFetchFailed
	// StatusNoContent means the page was retrieved but yielded no text.
	StatusNoContent
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFetchFailed:
		return "fetch_failed"
	case StatusNoContent:
		return "no_content"
	}
	return "unknown"
}

// Page is the plain-text reduction of a single web page.
type Page struct {
	URL        string
	Status     Status
	Title      string
	Paragraphs []string
	// Err carries the fetch error when Status is StatusFetchFailed.
	Err error
}

// Text renders the page as "title\nparagraph paragraph ...". Failed fetches
// render as "" and empty pages as NoContentMessage.
func (p Page) Text() string {
	switch p.Status {
	case StatusFetchFailed:
		return ""
	case StatusNoContent:
		return NoContentMessage
	}
	return p.Title + "\n" + strings.Join(p.Paragraphs, " ")
}

// FromHTML reduces raw HTML to the document title and the trimmed text of
// every non-empty <p> element, in document order. It never fails: input that
// cannot be parsed yields a StatusNoContent page.
func FromHTML(input []byte) Page {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Page{Status: StatusNoContent}
	}
	doc := goquery.NewDocumentFromNode(node)

	title := clean(doc.Find("title").First().Text())
	paragraphs := make([]string, 0, 16)
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := clean(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	page := Page{Status: StatusOK, Title: title, Paragraphs: paragraphs}
	if title == "" && len(paragraphs) == 0 {
		page.Status = StatusNoContent
	}
	return page
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Getter fetches a URL and returns its body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Extractor turns a URL into a Page.
type Extractor struct {
	Fetcher Getter
}

// Extract fetches url and reduces it to text. Fetch errors are logged and
// reported through the returned Page; Extract itself never fails.
func (e *Extractor) Extract(ctx context.Context, url string) Page {
	body, _, err := e.Fetcher.Get(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("stage", "extract").Str("url", url).Msg("error fetching URL")
		return Page{URL: url, Status: StatusFetchFailed, Err: err}
	}
	page := FromHTML(body)
	page.URL = url
	log.Debug().Str("stage", "extract").Str("url", url).Str("status", page.Status.String()).
		Int("paragraphs", len(page.Paragraphs)).Msg("extracted page")
	return page
}
