package transit

import "sync"

// election tracks which single candidate wins the connection race.
// Exactly one call to claim() across all candidates returns true; every
// other caller gets false and must drop its endpoint.
type election struct {
	once sync.Once
	won  bool
}

// claim attempts to win the election. Only the first caller succeeds.
func (e *election) claim() bool {
	won := false
	e.once.Do(func() {
		won = true
		e.won = true
	})
	return won
}
