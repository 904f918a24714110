package vectorstore

import "dialogvec/internal/domain"

// Storage holds feature rows and answers Euclidean nearest-neighbour queries.
// Rows are addressed by their insertion index.
type Storage interface {
	Init(dimension int) error
	Upsert(vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.Neighbor, error)
	Clear() error
}
