package session

import "time"

// DefaultWindow is the validity window of an issued token.
const DefaultWindow = 5 * time.Minute

// Expired reports whether a session issued at issuedAt is past its window at
// now. The boundary is strict: a read at exactly issuedAt+window is still
// valid.
func Expired(issuedAt, now time.Time, window time.Duration) bool {
	return now.After(issuedAt.Add(window))
}
