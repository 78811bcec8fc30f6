// Package fetcher downloads RSS/Atom feeds and converts their items into
// organic board posts.
package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"noticeboard/internal/model"
)

// maxMessageRunes caps the message text taken from an item description.
const maxMessageRunes = 300

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses RSS feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// Fetch downloads and parses an RSS feed from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Noticeboard/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// ItemGUID returns the GUID for an RSS item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// PostID derives a stable post id from an item GUID, so re-imports map to
// the same post.
func PostID(guid string) string {
	h := sha256.Sum256([]byte(guid))
	return fmt.Sprintf("rss_%x", h[:8])
}

// ToPosts converts feed items into posts of the given category. Items
// without a publication date are stamped with now.
func ToPosts(feed *gofeed.Feed, category model.PostCategory, now time.Time) []model.Post {
	posts := make([]model.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		guid := ItemGUID(item)

		ts := now
		switch {
		case item.PublishedParsed != nil:
			ts = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			ts = *item.UpdatedParsed
		}

		author := feed.Title
		if item.Author != nil && item.Author.Name != "" {
			author = item.Author.Name
		}

		posts = append(posts, model.Post{
			ID:        PostID(guid),
			Category:  category,
			Title:     strings.TrimSpace(item.Title),
			Message:   truncate(strings.TrimSpace(item.Description), maxMessageRunes),
			Author:    author,
			Timestamp: ts.UTC(),
			Source:    guid,
			Link:      item.Link,
		})
	}
	return posts
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
