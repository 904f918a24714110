package memory

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"

	"dialogvec/internal/domain"
)

// Storage is an in-memory vector store using brute-force Euclidean distance.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	return nil
}

func (s *Storage) Upsert(vectors [][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, v := range vectors {
		s.vectors = append(s.vectors, slices.Clone(v))
	}
	return nil
}

// Search returns the topK closest rows, nearest first. Equal distances are
// ordered by row index.
func (s *Storage) Search(vector []float64, topK int) ([]domain.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("vector dimension mismatch")
	}
	if topK <= 0 {
		topK = 5
	}
	neighbors := make([]domain.Neighbor, len(s.vectors))
	for i, row := range s.vectors {
		neighbors[i] = domain.Neighbor{Index: i, Distance: floats.Distance(row, vector, 2)}
	}
	slices.SortStableFunc(neighbors, func(a, b domain.Neighbor) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if topK > len(neighbors) {
		topK = len(neighbors)
	}
	return neighbors[:topK], nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	return nil
}
