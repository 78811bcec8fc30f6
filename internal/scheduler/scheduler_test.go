package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"noticeboard/internal/config"
	"noticeboard/internal/fetcher"
	"noticeboard/internal/model"
	"noticeboard/internal/promotion"
	"noticeboard/internal/storage"
)

type mockSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockSweeper) Sweep(_ context.Context) (promotion.CleanupResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return promotion.CleanupResult{}, m.err
}

func (m *mockSweeper) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockPurger struct {
	mu      sync.Mutex
	calls   int
	expired int
	open    int
	checked int
}

func (m *mockPurger) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.expired
}

func (m *mockPurger) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checked++
	return m.open
}

type mockHTTP struct {
	body   string
	status int
	mu     sync.Mutex
	urls   []string
}

func (m *mockHTTP) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.urls = append(m.urls, req.URL.String())
	m.mu.Unlock()

	status := m.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/sample.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var alertFeed = []config.ImportFeed{{Category: model.CategoryAlert, URL: "https://ward4.example.org/rss"}}

func TestRunOnceImportsPosts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sweeper := &mockSweeper{}
	purger := &mockPurger{}
	httpClient := &mockHTTP{body: loadFixture(t)}

	sched := NewWithFetcher(sweeper, purger, store, fetcher.New(httpClient), alertFeed, discardLogger())
	sched.runOnce(ctx)

	if diff := cmp.Diff(1, sweeper.count()); diff != "" {
		t.Errorf("sweep calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(1, purger.calls); diff != "" {
		t.Errorf("purge calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"https://ward4.example.org/rss"}, httpClient.urls); diff != "" {
		t.Errorf("fetched urls mismatch (-want +got):\n%s", diff)
	}

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if diff := cmp.Diff(3, len(posts)); diff != "" {
		t.Fatalf("post count mismatch (-want +got):\n%s", diff)
	}
	for _, p := range posts {
		if p.Category != model.CategoryAlert {
			t.Errorf("post %s has category %q, want alert", p.ID, p.Category)
		}
	}
}

func TestRunOnceDeduplicatesImports(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	xml := loadFixture(t)

	sched := NewWithFetcher(&mockSweeper{}, &mockPurger{}, store, fetcher.New(&mockHTTP{body: xml}), alertFeed, discardLogger())
	sched.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	sched.runOnce(ctx)
	first, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}

	sched.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	sched.runOnce(ctx)
	second, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-import should not add or move posts (-want +got):\n%s", diff)
	}
}

func TestRunOnceFetchError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sweeper := &mockSweeper{}

	sched := NewWithFetcher(sweeper, &mockPurger{}, store, fetcher.New(&mockHTTP{body: "not xml"}), alertFeed, discardLogger())
	sched.runOnce(ctx)

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts on fetch error, got %d", len(posts))
	}
	if diff := cmp.Diff(1, sweeper.count()); diff != "" {
		t.Errorf("sweep should still run (-want +got):\n%s", diff)
	}
}

func TestRunOnceSweepErrorDoesNotStopImports(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sweeper := &mockSweeper{err: errors.New("database is locked")}

	sched := NewWithFetcher(sweeper, &mockPurger{}, store, fetcher.New(&mockHTTP{body: loadFixture(t)}), alertFeed, discardLogger())
	sched.runOnce(ctx)

	posts, err := store.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if diff := cmp.Diff(3, len(posts)); diff != "" {
		t.Errorf("post count mismatch (-want +got):\n%s", diff)
	}
}

func TestRunOnceCancelledContext(t *testing.T) {
	store := newTestStore(t)
	sweeper := &mockSweeper{}
	httpClient := &mockHTTP{body: loadFixture(t)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched := NewWithFetcher(sweeper, &mockPurger{}, store, fetcher.New(httpClient), alertFeed, discardLogger())
	sched.runOnce(ctx)

	if diff := cmp.Diff(0, sweeper.count()); diff != "" {
		t.Errorf("no work expected after cancellation (-want +got):\n%s", diff)
	}
	if len(httpClient.urls) != 0 {
		t.Errorf("no fetch expected after cancellation, got %v", httpClient.urls)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	sweeper := &mockSweeper{}

	sched := NewWithFetcher(sweeper, &mockPurger{}, store, fetcher.New(&mockHTTP{body: "<rss><channel></channel></rss>"}), nil, discardLogger())
	sched.SetTickInterval(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if sweeper.count() < 2 {
		t.Errorf("expected an immediate pass plus ticks, got %d sweeps", sweeper.count())
	}
}

func TestRunOnceReportsPendingSessions(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	idle := &mockPurger{open: 3}
	NewWithFetcher(&mockSweeper{}, idle, newTestStore(t), fetcher.New(&mockHTTP{}), nil, log).runOnce(context.Background())
	if diff := cmp.Diff(0, idle.checked); diff != "" {
		t.Errorf("pending should only be read after a purge (-want +got):\n%s", diff)
	}

	purger := &mockPurger{expired: 2, open: 1}
	NewWithFetcher(&mockSweeper{}, purger, newTestStore(t), fetcher.New(&mockHTTP{}), nil, log).runOnce(context.Background())
	if diff := cmp.Diff(1, purger.checked); diff != "" {
		t.Errorf("pending calls mismatch (-want +got):\n%s", diff)
	}
	if out := buf.String(); !strings.Contains(out, "count=2") || !strings.Contains(out, "pending=1") {
		t.Errorf("purge log missing counts: %s", out)
	}
}
