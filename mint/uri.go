package mint

import (
	"fmt"
	"time"
)

// TokenURI is the derived metadata read. The dusk string covers the
// half-open window [22:00, 08:00) UTC, the dawn string the rest of the day,
// so exactly 22:00:00 reads dusk and exactly 08:00:00 reads dawn.
func (e *Engine) TokenURI(id uint64, now time.Time) (string, error) {
	s, err := e.store.ReadState()
	if err != nil {
		return "", err
	}
	if id == 0 || id > s.Issued {
		return "", fmt.Errorf("unknown token %d", id)
	}
	if duskWindow(now) {
		return s.DuskURI, nil
	}
	return s.DawnURI, nil
}

func duskWindow(t time.Time) bool {
	h := t.UTC().Hour()
	return h >= 22 || h < 8
}
