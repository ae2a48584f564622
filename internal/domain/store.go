package domain

import "time"

// Store handles local persistence (BoltDB + memory).
type Store interface {
	// === Credential ===
	LoadToken() (string, error)
	SaveToken(token string) error
	DeleteToken() error

	// === Page snapshots (warm start for the query cache) ===
	LoadPage(key string) ([]byte, time.Time, bool)
	SavePage(key string, data []byte, fetchedAt time.Time) error
	DeletePages(prefix string)

	// === Search history ===
	SearchHistory() []string
	SaveSearchHistory(terms []string) error

	Close() error
}
