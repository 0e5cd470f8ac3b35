// Package progress owns the per-video job state visible to pollers.
package progress

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lingotools/lingoclip/internal/types"
)

const (
	// Entries older than an hour are eligible for eviction.
	defaultTTL      = time.Hour
	janitorInterval = 10 * time.Minute
)

// Store keeps the latest ProcessingProgress and persisted Result per video
// id. Writes replace whole records; reads return value copies, so a poller
// never observes a partially-updated record.
type Store struct {
	progress *gocache.Cache
	results  *gocache.Cache
}

func NewStore() *Store {
	return &Store{
		progress: gocache.New(defaultTTL, janitorInterval),
		results:  gocache.New(defaultTTL, janitorInterval),
	}
}

// Put replaces the progress record for a video. Last writer wins.
func (s *Store) Put(videoID string, p types.ProcessingProgress) {
	s.progress.Set(videoID, p, gocache.DefaultExpiration)
}

// Get returns the latest progress snapshot for a video.
func (s *Store) Get(videoID string) (types.ProcessingProgress, bool) {
	v, ok := s.progress.Get(videoID)
	if !ok {
		return types.ProcessingProgress{}, false
	}
	return v.(types.ProcessingProgress), true
}

// PutResult persists the outcome of a finished job for later retrieval.
func (s *Store) PutResult(videoID string, r types.Result) {
	s.results.Set(videoID, r, gocache.DefaultExpiration)
}

// Result returns the persisted outcome for a video, if any.
func (s *Store) Result(videoID string) (types.Result, bool) {
	v, ok := s.results.Get(videoID)
	if !ok {
		return types.Result{}, false
	}
	return v.(types.Result), true
}
