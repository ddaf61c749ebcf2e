package cascade

// EntryState is the lifecycle state recorded in a cache entry.
type EntryState string

const (
	// EntryStarted — the day was started (or a submission reopened for
	// editing); no submitted data is claimed.
	EntryStarted EntryState = "started"
	// EntrySubmitted — the entry mirrors a submission the client believes
	// was accepted.
	EntrySubmitted EntryState = "submitted"
)

// CacheEntry is a local, non-authoritative mirror of at most one submission,
// keyed by (UserID, Date). It is always subordinate to remote state: the
// reconciler overwrites or purges it whenever the server disagrees.
type CacheEntry struct {
	ID          string // assigned by the service when the entry is created
	UserID      string
	Date        string // YYYY-MM-DD, local calendar day
	State       EntryState
	Description string
	Files       Files
}

// Cache is the per-user, per-day local submission store. Implementations
// never fail a read: a missing, corrupt, or date-mismatched entry is
// reported as absent (fail open to "not submitted").
type Cache interface {
	// Get returns the entry for (userID, date), or nil if there is none.
	// Implementations must revalidate the stored date against the requested
	// one: an entry keyed to another day is never returned, even if
	// EvictStale was skipped.
	Get(userID, date string) (*CacheEntry, error)

	// Put overwrites any existing entry for the entry's (UserID, Date) key.
	Put(entry *CacheEntry) error

	// EvictStale removes every entry for userID whose date differs from
	// currentDate. Runs before any Get in a reconciliation pass.
	EvictStale(userID, currentDate string) error

	// Clear removes the single entry for (userID, date).
	Clear(userID, date string) error

	// Close releases the underlying store.
	Close() error
}
