package service

import (
	"errors"
	"strings"
	"sync"

	"clinic-auth/internal/domain"
)

// ErrEmptyName is returned when a patient joins the queue without a name.
var ErrEmptyName = errors.New("patient name is required")

// QueueService is the in-process waiting queue of patient names.
type QueueService struct {
	mu      sync.Mutex
	waiting []string
	current string
}

func NewQueueService() *QueueService {
	return &QueueService{}
}

// Add appends name to the queue and returns its 1-based position.
func (q *QueueService) Add(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.waiting = append(q.waiting, name)
	return len(q.waiting), nil
}

// Next moves the head of the queue to the doctor.
func (q *QueueService) Next() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) == 0 {
		return "", domain.ErrQueueEmpty
	}
	q.current = q.waiting[0]
	q.waiting[0] = ""
	q.waiting = q.waiting[1:]
	return q.current, nil
}

// Current returns the patient being seen, if any.
func (q *QueueService) Current() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current, q.current != ""
}

func (q *QueueService) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
