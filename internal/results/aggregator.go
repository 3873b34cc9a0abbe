package results

import (
	"context"
	"math"
	"time"

	"github.com/quizdesk/quizdesk/internal/account"
	"github.com/quizdesk/quizdesk/internal/catalog"
	"github.com/quizdesk/quizdesk/internal/session"
)

// Aggregator is the read side: it derives statistics and per-attempt
// detail from completed sessions and never mutates anything.
type Aggregator struct {
	sessions session.Store
	catalog  catalog.Store
	accounts account.Store
}

func NewAggregator(sessions session.Store, cat catalog.Store, accounts account.Store) *Aggregator {
	return &Aggregator{sessions: sessions, catalog: cat, accounts: accounts}
}

type Stats struct {
	QuizID       string  `json:"quizId"`
	Title        string  `json:"title"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"averageScore"`
	HighestScore int     `json:"highestScore"`
	LowestScore  int     `json:"lowestScore"`
}

type AttemptSummary struct {
	SessionID    string    `json:"id"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	UserEmail    string    `json:"userEmail"`
	Score        int       `json:"score"`
	StartedAt    time.Time `json:"startedAt"`
	CompletedAt  time.Time `json:"completedAt"`
	MinutesTaken int       `json:"minutesTaken"`
}

// QuizStats aggregates completed sessions only. Average is rounded to
// one decimal; an empty set yields zeros.
func (a *Aggregator) QuizStats(ctx context.Context, quizID string) (Stats, []AttemptSummary, error) {
	quiz, err := a.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return Stats{}, nil, err
	}
	sessions, err := a.sessions.ListByQuiz(ctx, quizID)
	if err != nil {
		return Stats{}, nil, err
	}

	stats := Stats{QuizID: quizID, Title: quiz.Title}
	summaries := []AttemptSummary{}
	sum := 0
	for _, s := range sessions {
		if !s.Completed || s.Score == nil || s.CompletedAt == nil {
			continue
		}
		score := *s.Score
		sum += score
		if stats.Count == 0 || score > stats.HighestScore {
			stats.HighestScore = score
		}
		if stats.Count == 0 || score < stats.LowestScore {
			stats.LowestScore = score
		}
		stats.Count++

		summary := AttemptSummary{
			SessionID:    s.ID,
			UserID:       s.UserID,
			Score:        score,
			StartedAt:    s.StartedAt,
			CompletedAt:  *s.CompletedAt,
			MinutesTaken: ElapsedMinutes(s.StartedAt, *s.CompletedAt),
		}
		if u, err := a.accounts.GetByID(ctx, s.UserID); err == nil {
			summary.UserName = u.Name
			summary.UserEmail = u.Email
		}
		summaries = append(summaries, summary)
	}
	if stats.Count > 0 {
		stats.AverageScore = math.Round(float64(sum)/float64(stats.Count)*10) / 10
	}
	return stats, summaries, nil
}

type AnswerDetail struct {
	QuestionID     string           `json:"questionId"`
	QuestionText   string           `json:"questionText"`
	Points         int              `json:"points"`
	SelectedOption *catalog.Option  `json:"selectedOption,omitempty"`
	TextResponse   string           `json:"textResponse,omitempty"`
	Correct        bool             `json:"correct"`
	AllOptions     []catalog.Option `json:"allOptions"`
}

type Detail struct {
	SessionID    string         `json:"id"`
	QuizID       string         `json:"quizId"`
	QuizTitle    string         `json:"quizTitle"`
	UserID       string         `json:"userId"`
	UserName     string         `json:"userName"`
	UserEmail    string         `json:"userEmail"`
	Score        int            `json:"score"`
	StartedAt    time.Time      `json:"startedAt"`
	CompletedAt  time.Time      `json:"completedAt"`
	MinutesTaken int            `json:"minutesTaken"`
	Answers      []AnswerDetail `json:"answers"`
}

// SessionDetail exposes the full option set per answered question, so
// the correct answer is only revealed after completion.
func (a *Aggregator) SessionDetail(ctx context.Context, sessionID string) (Detail, error) {
	s, err := a.sessions.Get(ctx, sessionID)
	if err != nil {
		return Detail{}, err
	}
	if !s.Completed || s.Score == nil || s.CompletedAt == nil {
		return Detail{}, session.ErrNotFound
	}
	quiz, err := a.catalog.GetQuiz(ctx, s.QuizID)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{
		SessionID:    s.ID,
		QuizID:       quiz.ID,
		QuizTitle:    quiz.Title,
		UserID:       s.UserID,
		Score:        *s.Score,
		StartedAt:    s.StartedAt,
		CompletedAt:  *s.CompletedAt,
		MinutesTaken: ElapsedMinutes(s.StartedAt, *s.CompletedAt),
	}
	if u, err := a.accounts.GetByID(ctx, s.UserID); err == nil {
		d.UserName = u.Name
		d.UserEmail = u.Email
	}

	questions := map[string]catalog.Question{}
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}
	d.Answers = []AnswerDetail{}
	for _, ans := range s.Answers {
		q, ok := questions[ans.QuestionID]
		if !ok {
			continue
		}
		ad := AnswerDetail{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Points:       q.Points,
			TextResponse: ans.TextResponse,
			Correct:      ans.Correct,
			AllOptions:   q.Options,
		}
		if ans.OptionID != "" {
			for i := range q.Options {
				if q.Options[i].ID == ans.OptionID {
					ad.SelectedOption = &q.Options[i]
					break
				}
			}
		}
		d.Answers = append(d.Answers, ad)
	}
	return d, nil
}

// ElapsedMinutes truncates to whole minutes, it does not round.
func ElapsedMinutes(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}
