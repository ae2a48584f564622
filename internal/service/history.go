package service

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// HistoryLimit is the number of distinct search terms kept
const HistoryLimit = 50

// HistoryStore persists search terms, newest first
type HistoryStore interface {
	SearchHistory() []string
	SaveSearchHistory(terms []string) error
}

// SearchHistory remembers submitted search terms and suggests them while typing
type SearchHistory struct {
	store  HistoryStore
	logger *slog.Logger

	mu    sync.RWMutex
	terms []string
}

// NewSearchHistory loads the stored terms. store may be nil.
func NewSearchHistory(store HistoryStore, logger *slog.Logger) *SearchHistory {
	if logger == nil {
		logger = slog.Default()
	}
	h := &SearchHistory{store: store, logger: logger}
	if store != nil {
		h.terms = store.SearchHistory()
	}
	return h
}

// Add records term as the most recent search
func (h *SearchHistory) Add(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	h.mu.Lock()
	terms := make([]string, 0, len(h.terms)+1)
	terms = append(terms, term)
	for _, t := range h.terms {
		if !strings.EqualFold(t, term) {
			terms = append(terms, t)
		}
	}
	if len(terms) > HistoryLimit {
		terms = terms[:HistoryLimit]
	}
	h.terms = terms
	h.mu.Unlock()

	h.save(terms)
}

// Terms returns the history, newest first
func (h *SearchHistory) Terms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.terms...)
}

// Suggest returns up to n past terms matching input, best match first.
// Blank input returns the most recent terms.
func (h *SearchHistory) Suggest(input string, n int) []string {
	input = strings.TrimSpace(input)
	terms := h.Terms()

	if input == "" {
		if n > 0 && len(terms) > n {
			terms = terms[:n]
		}
		return terms
	}

	ranks := fuzzy.RankFindFold(input, terms)
	sort.Stable(ranks)

	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		if strings.EqualFold(r.Target, input) {
			continue
		}
		out = append(out, r.Target)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// Clear forgets every term
func (h *SearchHistory) Clear() {
	h.mu.Lock()
	h.terms = nil
	h.mu.Unlock()
	h.save(nil)
}

func (h *SearchHistory) save(terms []string) {
	if h.store == nil {
		return
	}
	if err := h.store.SaveSearchHistory(terms); err != nil {
		h.logger.Warn("failed to save search history", "error", err)
	}
}
