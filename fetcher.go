package main

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// fetchUserAgent identifies fetch-url requests to remote sites
	fetchUserAgent = "LLM-Council-Fetcher/1.0"

	// maxFetchedContentLength caps extracted text so a large page cannot
	// blow up a council prompt
	maxFetchedContentLength = 8000
)

var whitespacePattern = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)

// FetchURLContent fetches a web page and extracts its readable text so it
// can be attached to a council query. Script, style and navigation noise are
// stripped; whitespace is collapsed; output is truncated to a prompt-safe
// length.
func FetchURLContent(ctx context.Context, url string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("unsupported URL scheme: %s", url)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	client := &http.Client{Timeout: URLFetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", fmt.Errorf("no body element found")
	}
	parts = append(parts, strings.TrimSpace(body.Text()))

	content := strings.Join(parts, "\n\n")
	content = whitespacePattern.ReplaceAllString(content, "\n")
	content = strings.TrimSpace(content)

	if len(content) > maxFetchedContentLength {
		content = content[:maxFetchedContentLength]
	}

	return content, nil
}
