package session

import "encoding/json"

type wireAnswer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	Answer           string `json:"answer"`
}

// ParseSubmission normalizes the answer collection of a submit request.
// Clients have historically sent either a direct list or a wrapper
// object with the list under a nested "answers" key; anything else
// degrades to an empty submission rather than failing the request.
func ParseSubmission(raw json.RawMessage) []SubmittedAnswer {
	if len(raw) == 0 {
		return nil
	}

	var direct []wireAnswer
	if err := json.Unmarshal(raw, &direct); err == nil {
		return convert(direct)
	}

	var wrapped struct {
		Answers []wireAnswer `json:"answers"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Answers != nil {
		return convert(wrapped.Answers)
	}

	return nil
}

func convert(in []wireAnswer) []SubmittedAnswer {
	out := make([]SubmittedAnswer, 0, len(in))
	for _, w := range in {
		if w.QuestionID == "" {
			continue
		}
		out = append(out, SubmittedAnswer{
			QuestionID: w.QuestionID,
			OptionID:   w.SelectedOptionID,
			Text:       w.Answer,
		})
	}
	return out
}
