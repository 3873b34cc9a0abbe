package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewInMemoryStore() Store {
	return &memoryStore{sessions: map[string]Session{}}
}

func (m *memoryStore) StartAttempt(ctx context.Context, userID, quizID string) (Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID != userID || s.QuizID != quizID {
			continue
		}
		if s.Completed {
			return Session{}, false, ErrAlreadyCompleted
		}
		return s, false, nil
	}
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		QuizID:    quizID,
		StartedAt: time.Now(),
	}
	m.sessions[sess.ID] = sess
	return sess, true, nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *memoryStore) GetActive(ctx context.Context, userID, quizID string) (Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.QuizID == quizID && !s.Completed {
			return s, true, nil
		}
	}
	return Session{}, false, nil
}

func (m *memoryStore) Complete(ctx context.Context, sessionID string, answers []Answer, score int, completedAt time.Time) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	if s.Completed {
		return Session{}, ErrAlreadyCompleted
	}
	for i := range answers {
		if answers[i].ID == "" {
			answers[i].ID = uuid.NewString()
		}
		answers[i].SessionID = sessionID
		answers[i].Ord = i
	}
	s.Answers = answers
	s.Score = &score
	s.CompletedAt = &completedAt
	s.Completed = true
	m.sessions[sessionID] = s
	return s, nil
}

func (m *memoryStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	return m.listWhere(func(s Session) bool { return s.UserID == userID })
}

func (m *memoryStore) ListByQuiz(ctx context.Context, quizID string) ([]Session, error) {
	return m.listWhere(func(s Session) bool { return s.QuizID == quizID })
}

func (m *memoryStore) listWhere(keep func(Session) bool) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Session{}
	for _, s := range m.sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}
