package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{"Student Name", "Email", "Score", "Time Taken (min)", "Submission Date"}

// WriteCSV streams completed attempts of a quiz as CSV.
func (a *Aggregator) WriteCSV(ctx context.Context, w io.Writer, quizID string) error {
	_, attempts, err := a.QuizStats(ctx, quizID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, at := range attempts {
		rec := []string{
			at.UserName,
			at.UserEmail,
			fmt.Sprintf("%d%%", at.Score),
			fmt.Sprintf("%d", at.MinutesTaken),
			at.CompletedAt.Format("01/02/2006 15:04"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
