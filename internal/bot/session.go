package bot

import (
	"sync"

	"noticeboard/internal/board"
	"noticeboard/internal/feed"
	"noticeboard/internal/filter"
)

// chatSession is the in-memory reading state of one chat. It is lost on
// restart, so sponsors suppressed as seen become eligible again.
type chatSession struct {
	query board.FeedRequest
	// shown holds the sponsors injected into the current query's pages.
	shown     []string
	seen      feed.SeenSet
	dismissed map[string]bool
	pending   *board.PendingPromotion
}

type sessions struct {
	mu    sync.Mutex
	chats map[int64]*chatSession
}

func newSessions() *sessions {
	return &sessions{chats: make(map[int64]*chatSession)}
}

// with runs fn with the chat's session, creating it on first use.
func (s *sessions) with(chatID int64, fn func(cs *chatSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.chats[chatID]
	if !ok {
		cs = &chatSession{
			query:     board.FeedRequest{Tab: filter.TabAll, Page: 1},
			seen:      feed.SeenSet{},
			dismissed: make(map[string]bool),
		}
		s.chats[chatID] = cs
	}
	fn(cs)
}

// startQuery begins a new feed query. Sponsors shown by the previous query
// are marked as seen so the new one rotates to others.
func (cs *chatSession) startQuery(tab filter.Tab, search string, page int) board.FeedRequest {
	cs.seen.Add(cs.shown...)
	cs.shown = nil
	cs.query = board.FeedRequest{Tab: tab, Search: search, Page: max(page, 1)}
	return cs.request()
}

// nextPage extends the current query by one page. The seen set is kept so
// sponsors stay in their slots as the prefix grows.
func (cs *chatSession) nextPage() board.FeedRequest {
	cs.query.Page++
	return cs.request()
}

func (cs *chatSession) request() board.FeedRequest {
	req := cs.query
	req.Seen = make(feed.SeenSet, len(cs.seen))
	for id := range cs.seen {
		req.Seen[id] = struct{}{}
	}
	req.Dismissed = make(map[string]bool, len(cs.dismissed))
	for id, v := range cs.dismissed {
		req.Dismissed[id] = v
	}
	return req
}
