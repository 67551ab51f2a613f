// Package gateways implements the verification pipeline's adapters:
// HTTP retrieval, digest checking, signature checking, archive
// inspection and cleanup.
package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/rbowen/verify-release/internal/domain/entities"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
)

// stagingFileLink matches hrefs pointing at release archives and their
// digest/signature sidecars.
var stagingFileLink = regexp.MustCompile(`\.(tgz|tar\.gz|sha\d+|asc)$`)

// Fetcher downloads staging listings and artifact files
type Fetcher struct {
	httpClient *http.Client
	log        interfaces.Logger
}

// NewFetcher creates a fetcher with a bounded timeout suitable for
// large artifact downloads
func NewFetcher(log interfaces.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for large downloads
		},
		log: log,
	}
}

// ListArtifacts fetches the staging URL's HTML directory listing and
// returns the linked archive and sidecar files in listing order.
func (f *Fetcher) ListArtifacts(ctx context.Context, stagingURL string) ([]entities.Artifact, error) {
	stagingURL = strings.TrimSuffix(stagingURL, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, stagingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "verify-release/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	names, err := parseListing(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory listing: %w", err)
	}

	artifacts := make([]entities.Artifact, 0, len(names))
	for _, name := range names {
		artifacts = append(artifacts, entities.Artifact{
			Filename:  name,
			SourceURL: stagingURL + "/" + name,
			Kind:      entities.KindOf(name),
		})
	}
	return artifacts, nil
}

// parseListing walks the anchor tags of an HTML directory listing and
// returns the hrefs that look like release files, deduplicated in
// document order.
func parseListing(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if !stagingFileLink.MatchString(attr.Val) {
					continue
				}
				name := path.Base(attr.Val)
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return names, nil
}

// Download fetches url into destPath. An already-present destination
// is treated as authoritative and left untouched.
func (f *Fetcher) Download(ctx context.Context, url, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		f.log.Info(fmt.Sprintf("Skipping %s (already exists)", filepath.Base(destPath)))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "verify-release/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	//nolint:gosec // G304: destPath is the caller's download destination
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	//nolint:errcheck // Defer close on file being written
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	f.log.Info(fmt.Sprintf("Downloaded %s (%d bytes)", filepath.Base(destPath), written))
	return nil
}
