// In-memory TTL cache for extraction results
// Key: source URL → interactions extracted from it
package services

import (
	"sync"
	"time"

	"github.com/leadscout/leadscout-backend/models"
)

type extractCacheEntry struct {
	Interactions []models.InteractionRecord
	CachedAt     time.Time
}

var (
	extractCache   = map[string]*extractCacheEntry{}
	extractCacheMu sync.RWMutex
	extractTTL     = 1 * time.Hour
)

// GetCachedInteractions returns a cached result if still fresh, plus a found
// boolean. Empty results are cached too, so a known-empty page isn't
// re-extracted on every rerun.
func GetCachedInteractions(url string) ([]models.InteractionRecord, bool) {
	extractCacheMu.RLock()
	defer extractCacheMu.RUnlock()
	e, ok := extractCache[url]
	if !ok || time.Since(e.CachedAt) > extractTTL {
		return nil, false
	}
	return e.Interactions, true
}

// SetCachedInteractions stores the result for future calls.
func SetCachedInteractions(url string, interactions []models.InteractionRecord) {
	extractCacheMu.Lock()
	defer extractCacheMu.Unlock()
	extractCache[url] = &extractCacheEntry{Interactions: interactions, CachedAt: time.Now()}
}

// ClearExtractionCache drops all cached extraction results.
func ClearExtractionCache() {
	extractCacheMu.Lock()
	defer extractCacheMu.Unlock()
	extractCache = map[string]*extractCacheEntry{}
}
