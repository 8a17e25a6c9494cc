package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"wikinotes/internal/observability/logging"
	"wikinotes/internal/resilience/circuitbreaker"
	"wikinotes/internal/resilience/retry"
	artUC "wikinotes/internal/usecase/article"
)

// maxKeyFacts bounds the number of infobox rows kept as key facts.
const maxKeyFacts = 12

// ReadabilityFetcher implements artUC.PageFetcher. Metadata comes from the
// page's Open Graph and description tags, the readability extraction fills
// the gaps, and infobox rows become the key facts.
//
// ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

var _ artUC.PageFetcher = (*ReadabilityFetcher)(nil)

// NewReadabilityFetcher creates a fetcher whose HTTP client validates every
// redirect target and whose requests pass through a circuit breaker.
func NewReadabilityFetcher(config Config) *ReadabilityFetcher {
	breakerCfg := circuitbreaker.ArticleImportConfig()
	breakerCfg.IsSuccessful = siteAnswered
	f := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(breakerCfg),
		config:         config,
	}

	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", artUC.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return f
}

// FetchPage downloads urlStr and extracts its article metadata. Transient
// failures are retried; each attempt passes through the circuit breaker.
func (f *ReadabilityFetcher) FetchPage(ctx context.Context, urlStr string) (*artUC.Page, error) {
	if err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	var page *artUC.Page
	err := retry.WithBackoff(ctx, f.config.Retry, func() error {
		var err error
		page, err = circuitbreaker.Run(f.circuitBreaker, func() (*artUC.Page, error) {
			return f.doFetch(ctx, urlStr)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (*artUC.Page, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", artUC.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: request exceeded %v", artUC.ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			if urlErr.Timeout() {
				return nil, fmt.Errorf("%w: request exceeded %v", artUC.ErrTimeout, f.config.Timeout)
			}
			// Redirect checks report their own sentinels.
			if errors.Is(urlErr.Err, artUC.ErrPrivateIP) ||
				errors.Is(urlErr.Err, artUC.ErrTooManyRedirects) ||
				errors.Is(urlErr.Err, artUC.ErrInvalidURL) {
				return nil, urlErr.Err
			}
		}
		return nil, fmt.Errorf("%w: %w", artUC.ErrUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", artUC.ErrUpstreamStatus, &retry.StatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response exceeds limit of %d bytes", artUC.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	pageURL := resp.Request.URL
	page, err := extractPage(body, pageURL)
	if err != nil {
		return nil, err
	}
	page.Size = len(body)

	logging.FromContext(ctx).Debug("article page fetched",
		slog.String("url", page.URL),
		slog.Int("size", page.Size),
		slog.Bool("has_key_facts", page.KeyFacts != ""))
	return page, nil
}

// siteAnswered reports whether err describes the requested page rather than
// a failure to reach sites at all. Such errors do not count toward opening
// the import breaker.
func siteAnswered(err error) bool {
	if err == nil {
		return true
	}
	var statusErr *retry.StatusError
	if errors.As(err, &statusErr) {
		return !retry.IsRetryable(statusErr)
	}
	return errors.Is(err, artUC.ErrExtractionFailed) ||
		errors.Is(err, artUC.ErrBodyTooLarge) ||
		errors.Is(err, artUC.ErrTooManyRedirects) ||
		errors.Is(err, artUC.ErrInvalidURL) ||
		errors.Is(err, artUC.ErrPrivateIP) ||
		errors.Is(err, context.Canceled)
}

// extractPage builds a Page from the raw HTML of pageURL.
func extractPage(body []byte, pageURL *url.URL) (*artUC.Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", artUC.ErrExtractionFailed, err)
	}

	page := &artUC.Page{
		URL:         pageURL.String(),
		Title:       firstNonEmpty(metaContent(doc, "og:title"), strings.TrimSpace(doc.Find("title").First().Text())),
		Description: firstNonEmpty(metaContent(doc, "description"), metaContent(doc, "og:description")),
		ImageURL:    metaContent(doc, "og:image"),
		KeyFacts:    infoboxFacts(doc),
	}

	// The readability pass is best effort: pages without a main article
	// still yield their metadata.
	if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		page.Title = firstNonEmpty(page.Title, strings.TrimSpace(article.Title))
		page.Description = firstNonEmpty(page.Description, strings.TrimSpace(article.Excerpt))
		page.ImageURL = firstNonEmpty(page.ImageURL, article.Image)
	}

	if page.Title == "" {
		return nil, fmt.Errorf("%w: page has no title", artUC.ErrExtractionFailed)
	}
	page.ImageURL = absoluteURL(pageURL, page.ImageURL)
	return page, nil
}

// metaContent returns the content of <meta property=name> or <meta name=name>.
func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

// infoboxFacts renders the label/value rows of the first infobox table as
// "Label: value" lines.
func infoboxFacts(doc *goquery.Document) string {
	var facts []string
	doc.Find("table.infobox tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := collapseSpace(row.Find("th").First().Text())
		value := collapseSpace(row.Find("td").First().Text())
		if label != "" && value != "" {
			facts = append(facts, label+": "+value)
		}
		return len(facts) < maxKeyFacts
	})
	return strings.Join(facts, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func absoluteURL(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
