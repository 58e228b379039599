package store

import (
	"errors"
	"sync"

	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/rs/zerolog"
)

// ErrMalformedSource marks a data source that exists but cannot be parsed.
// Load failures are fatal at startup: the process must not serve questions
// over a half-loaded dataset.
var ErrMalformedSource = errors.New("malformed data source")

// Store holds the full match dataset in memory. Load populates it exactly
// once; after a successful Load the store is read-only and safe to share
// across concurrent readers.
type Store struct {
	mu      sync.Mutex
	dataset *models.Dataset
	logger  *zerolog.Logger
}

func New(logger *zerolog.Logger) *Store {
	return &Store{logger: logger}
}

// Load reads the dataset from path. Repeated calls return the cached dataset
// without touching the disk again. A failed load does not poison the store;
// the caller may retry with a corrected source.
func (s *Store) Load(path string) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset != nil {
		return s.dataset, nil
	}

	ds, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	s.dataset = ds
	s.logger.Info().
		Str("team", ds.Team).
		Str("season", ds.Season).
		Int("matches", len(ds.Matches)).
		Msg("match data loaded")

	return s.dataset, nil
}

// AllRecords returns every loaded match record in dataset order. It never
// fails: before Load it returns an empty slice.
func (s *Store) AllRecords() []models.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset == nil {
		return nil
	}
	return s.dataset.Matches
}

// Dataset returns the loaded dataset, or nil before Load.
func (s *Store) Dataset() *models.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}
