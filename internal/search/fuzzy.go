package search

import (
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/curator/internal/domain"
)

// Match is a torrent that passed the filter
type Match struct {
	Torrent        domain.Torrent
	Index          int   // Index in the source slice
	MatchedIndexes []int // Byte offsets in the title that matched (for highlighting)
}

// titleIndex implements sahilm/fuzzy.Source over torrent titles
type titleIndex []domain.Torrent

func (idx titleIndex) String(i int) string { return idx[i].Title }

func (idx titleIndex) Len() int { return len(idx) }

// FilterTorrents ranks torrents by how well their titles match query.
// An empty query keeps every torrent in its original order.
func FilterTorrents(query string, torrents []domain.Torrent) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, len(torrents))
		for i, t := range torrents {
			out[i] = Match{Torrent: t, Index: i}
		}
		return out
	}

	results := fuzzy.FindFrom(query, titleIndex(torrents))
	out := make([]Match, 0, len(results))
	for _, r := range results {
		out = append(out, Match{
			Torrent:        torrents[r.Index],
			Index:          r.Index,
			MatchedIndexes: r.MatchedIndexes,
		})
	}
	return out
}

// MatchTitle reports whether every rune of query appears in title in order,
// ignoring case. Release names use dots for spaces, so "show s01" matches
// "Show.S01E01" once separators are ignored.
func MatchTitle(query, title string) bool {
	query = normalize(query)
	if query == "" {
		return true
	}
	return lfuzzy.MatchFold(query, normalize(title))
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '_', '-':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
