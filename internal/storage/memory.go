package storage

import (
	"context"
	"sync"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

type postKey struct {
	source     domain.Source
	platformID string
}

type storedPost struct {
	post      domain.ScoredPost
	embedding []float32
}

// MemoryStore keeps scored posts in process memory. It exists so the
// service runs without Postgres (development, tests) behind the same
// domain.PostStore contract.
type MemoryStore struct {
	mu    sync.Mutex
	posts map[postKey]storedPost
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[postKey]storedPost)}
}

func (s *MemoryStore) SavePost(_ context.Context, post domain.ScoredPost, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[postKey{post.Source, post.PlatformID}] = storedPost{post: post, embedding: embedding}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Len reports the number of distinct stored posts.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// Get returns a stored post by identity, for tests and inspection.
func (s *MemoryStore) Get(source domain.Source, platformID string) (domain.ScoredPost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[postKey{source, platformID}]
	return stored.post, ok
}
