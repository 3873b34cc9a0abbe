package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]*Quiz
}

func NewInMemoryStore() Store {
	return &memoryStore{quizzes: map[string]*Quiz{}}
}

func (m *memoryStore) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	cp := q
	m.quizzes[q.ID] = &cp
	return q, nil
}

func (m *memoryStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	out := *q
	out.Questions = append([]Question(nil), q.Questions...)
	for i := range out.Questions {
		out.Questions[i].Options = append([]Option(nil), q.Questions[i].Options...)
	}
	out.QuestionCount = len(out.Questions)
	return out, nil
}

func (m *memoryStore) AddQuestion(ctx context.Context, quizID string, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	quiz, ok := m.quizzes[quizID]
	if !ok {
		return Question{}, ErrQuizNotFound
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.QuizID = quizID
	q.Ord = len(quiz.Questions)
	quiz.Questions = append(quiz.Questions, q)
	return q, nil
}

func (m *memoryStore) AddOption(ctx context.Context, questionID string, o Option) (Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, quiz := range m.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID != questionID {
				continue
			}
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			o.QuestionID = questionID
			o.Ord = len(quiz.Questions[i].Options)
			quiz.Questions[i].Options = append(quiz.Questions[i].Options, o)
			return o, nil
		}
	}
	return Option{}, ErrQuestionNotFound
}

func (m *memoryStore) SetQuizActive(ctx context.Context, id string, active bool) (Quiz, error) {
	m.mu.Lock()
	q, ok := m.quizzes[id]
	if !ok {
		m.mu.Unlock()
		return Quiz{}, ErrQuizNotFound
	}
	q.Active = active
	m.mu.Unlock()
	return m.GetQuiz(ctx, id)
}

func (m *memoryStore) DeleteQuiz(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(m.quizzes, id)
	return nil
}

func (m *memoryStore) ListActive(ctx context.Context) ([]Quiz, error) {
	return m.listWhere(func(q *Quiz) bool { return q.Active })
}

func (m *memoryStore) ListActiveByExaminer(ctx context.Context, examinerID string) ([]Quiz, error) {
	return m.listWhere(func(q *Quiz) bool { return q.Active && q.ExaminerID == examinerID })
}

func (m *memoryStore) ListByExaminer(ctx context.Context, examinerID string) ([]Quiz, error) {
	return m.listWhere(func(q *Quiz) bool { return q.ExaminerID == examinerID })
}

func (m *memoryStore) listWhere(keep func(*Quiz) bool) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Quiz{}
	for _, q := range m.quizzes {
		if keep(q) {
			cp := *q
			cp.Questions = nil
			cp.QuestionCount = len(q.Questions)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
