package storage

import (
	"sort"
	"sync"

	"github.com/samaralitalim/answersheet/internal/models"
)

// SubmissionStore keeps submissions made through the web service in memory
type SubmissionStore struct {
	submissions map[string]*models.Submission
	images      map[string][]byte
	mu          sync.RWMutex
}

func New() *SubmissionStore {
	return &SubmissionStore{
		submissions: make(map[string]*models.Submission),
		images:      make(map[string][]byte),
	}
}

// Get returns a copy of the submission so callers never race the workflow goroutine
func (s *SubmissionStore) Get(id string) (*models.Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, exists := s.submissions[id]
	if !exists {
		return nil, false
	}
	cp := *sub
	return &cp, true
}

func (s *SubmissionStore) Set(id string, sub *models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.submissions[id] = &cp
}

// Update applies fn to the stored submission under the write lock
func (s *SubmissionStore) Update(id string, fn func(*models.Submission)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, exists := s.submissions[id]
	if !exists {
		return false
	}
	fn(sub)
	return true
}

// List returns copies of all submissions, newest first
func (s *SubmissionStore) List() []*models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Submission, 0, len(s.submissions))
	for _, v := range s.submissions {
		cp := *v
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *SubmissionStore) SetImage(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[id] = data
}

func (s *SubmissionStore) Image(id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.images[id]
	return data, ok
}

func (s *SubmissionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.submissions, id)
	delete(s.images, id)
}
