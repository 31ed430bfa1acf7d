package service

import (
	"math/rand/v2"
	"sync"

	"github.com/maheshrc27/trendqueue/internal/models"
)

// MaxSelectionTrials bounds the random draws made before the used-set is reset.
const MaxSelectionTrials = 10

// Selector picks trending candidates that have not been queued yet. The
// used-set lives for the life of the process.
type Selector struct {
	mu        sync.Mutex
	used      map[string]struct{}
	maxTrials int
	intn      func(n int) int
}

// NewSelector returns a Selector drawing from rnd, or from the global source
// when rnd is nil.
func NewSelector(maxTrials int, rnd *rand.Rand) *Selector {
	if maxTrials <= 0 {
		maxTrials = MaxSelectionTrials
	}
	intn := rand.IntN
	if rnd != nil {
		intn = rnd.IntN
	}
	return &Selector{
		used:      make(map[string]struct{}),
		maxTrials: maxTrials,
		intn:      intn,
	}
}

// SelectUnused draws up to maxTrials candidates uniformly and returns the
// first one not used yet. When every draw hits a used id the used-set is
// cleared and one more uniform draw is accepted unconditionally. The chosen
// id is recorded as used.
func (s *Selector) SelectUnused(candidates []models.TrendingVideo) (models.TrendingVideo, error) {
	if len(candidates) == 0 {
		return models.TrendingVideo{}, ErrNoCandidates
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < s.maxTrials; i++ {
		candidate := candidates[s.intn(len(candidates))]
		if _, used := s.used[candidate.ID]; !used {
			s.used[candidate.ID] = struct{}{}
			return candidate, nil
		}
	}

	clear(s.used)
	candidate := candidates[s.intn(len(candidates))]
	s.used[candidate.ID] = struct{}{}
	return candidate, nil
}

func (s *Selector) markUsed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[id] = struct{}{}
}

func (s *Selector) isUsed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.used[id]
	return ok
}

// UsedCount reports how many ids are in the used-set.
func (s *Selector) UsedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.used)
}
