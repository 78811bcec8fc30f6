package feed

import "noticeboard/internal/model"

// Organic wraps posts as organic feed entries.
func Organic(posts []model.Post) []model.FeedEntry {
	out := make([]model.FeedEntry, len(posts))
	for i, p := range posts {
		out[i] = model.FeedEntry{Kind: model.EntryOrganic, Post: &p}
	}
	return out
}

// InjectSponsored inserts one sponsored entry per slot, consuming sponsored
// in order. Slots are positions in the growing output, so each insertion
// shifts later posts back by one. A slot past the end appends. Injection
// stops when either slots or sponsored run out; empty slots or sponsors
// leave the organic feed unchanged. Inputs are not modified.
func InjectSponsored(organic []model.Post, sponsored []model.Listing, slots []int) []model.FeedEntry {
	out := Organic(organic)

	next := 0
	for _, pos := range slots {
		if next >= len(sponsored) {
			break
		}
		idx := min(max(pos, 0), len(out))

		l := sponsored[next]
		next++
		entry := model.FeedEntry{Kind: model.EntrySponsored, Listing: &l}

		out = append(out, model.FeedEntry{})
		copy(out[idx+1:], out[idx:])
		out[idx] = entry
	}
	return out
}

// SponsoredIDs returns the ids of the sponsored listings in entries.
func SponsoredIDs(entries []model.FeedEntry) []string {
	var ids []string
	for _, e := range entries {
		if e.Kind == model.EntrySponsored && e.Listing != nil {
			ids = append(ids, e.Listing.ID)
		}
	}
	return ids
}
