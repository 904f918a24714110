package qdrant

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"dialogvec/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// It uses Euclidean distance and creates the collection if missing.
// Point ids are the row indexes, so results map straight back to records.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	next       int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	s.next = 0
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Euclid",
		},
	}
	return s.send(http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil)
}

func (s *Storage) Upsert(vectors [][]float64) error {
	points := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		points[i] = map[string]any{
			"id":     s.next + i,
			"vector": v,
		}
	}
	body := map[string]any{"points": points}
	if err := s.send(http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil); err != nil {
		return err
	}
	s.next += len(vectors)
	return nil
}

// Search asks Qdrant for the topK nearest points. Qdrant reports the
// Euclidean distance as the score but picks freely among points tied at the
// cut-off, so the limit is doubled until the last fetched distance is beyond
// the k-th one or the collection is exhausted. Results come back ordered by
// (distance, index).
func (s *Storage) Search(vector []float64, topK int) ([]domain.Neighbor, error) {
	if topK <= 0 {
		topK = 5
	}
	// One extra point shows whether the k-th distance is shared past the cut-off.
	limit := topK + 1
	for {
		results, err := s.search(vector, limit)
		if err != nil {
			return nil, err
		}
		if len(results) < limit || results[limit-1].Distance > results[topK-1].Distance {
			return results[:min(topK, len(results))], nil
		}
		limit *= 2
	}
}

func (s *Storage) search(vector []float64, limit int) ([]domain.Neighbor, error) {
	req := map[string]any{
		"vector": vector,
		"limit":  limit,
	}
	var resp struct {
		Result []struct {
			ID    int     `json:"id"`
			Score float64 `json:"score"`
		} `json:"result"`
	}
	if err := s.send(http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.Neighbor, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.Neighbor{Index: r.ID, Distance: r.Score})
	}
	slices.SortFunc(results, func(a, b domain.Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return results, nil
}

func (s *Storage) Clear() error {
	// Best-effort: drop collection
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err == nil {
		_ = resp.Body.Close()
	}
	s.next = 0
	return nil
}

func (s *Storage) send(method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
