package session

import (
	"encoding/json"
	"testing"
)

func TestParseSubmissionDirectList(t *testing.T) {
	raw := json.RawMessage(`[
		{"questionId": "q1", "selectedOptionId": "o1"},
		{"questionId": "q2", "answer": "free text"}
	]`)
	got := ParseSubmission(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(got))
	}
	if got[0].QuestionID != "q1" || got[0].OptionID != "o1" {
		t.Fatalf("first answer mismatch: %+v", got[0])
	}
	if got[1].QuestionID != "q2" || got[1].Text != "free text" {
		t.Fatalf("second answer mismatch: %+v", got[1])
	}
}

func TestParseSubmissionWrappedList(t *testing.T) {
	raw := json.RawMessage(`{"answers": [{"questionId": "q1", "selectedOptionId": "o2"}]}`)
	got := ParseSubmission(raw)
	if len(got) != 1 || got[0].OptionID != "o2" {
		t.Fatalf("wrapped list not parsed: %+v", got)
	}
}

func TestParseSubmissionUnrecognizedShape(t *testing.T) {
	for _, raw := range []string{`"hello"`, `42`, `{"foo": 1}`, `null`, ``} {
		if got := ParseSubmission(json.RawMessage(raw)); len(got) != 0 {
			t.Fatalf("shape %q: expected empty, got %+v", raw, got)
		}
	}
}

func TestParseSubmissionSkipsBlankQuestionIDs(t *testing.T) {
	raw := json.RawMessage(`[
		{"selectedOptionId": "o1"},
		{"questionId": "q1", "selectedOptionId": "o1"}
	]`)
	got := ParseSubmission(raw)
	if len(got) != 1 || got[0].QuestionID != "q1" {
		t.Fatalf("blank questionId not skipped: %+v", got)
	}
}
