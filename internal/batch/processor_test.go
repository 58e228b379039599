package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/roarlabs/clubgpt/internal/models"
)

type stubAnswerer struct {
	err error
}

func (s *stubAnswerer) Answer(ctx context.Context, question string) (models.AnswerResult, error) {
	if s.err != nil {
		return models.AnswerResult{}, s.err
	}
	return models.AnswerResult{
		Question:     question,
		Answer:       "answer to: " + question,
		Sources:      []string{"season-summary"},
		ContextFound: true,
	}, nil
}

func TestProcessor_AnswersAllRecords(t *testing.T) {
	var records []InputRecord
	for i := range 10 {
		records = append(records, InputRecord{
			LineNumber: i + 1,
			Request:    Question{ID: fmt.Sprintf("q-%d", i), Question: "question"},
		})
	}

	processor := NewProcessor(&stubAnswerer{}, 3, newTestLogger())
	results := processor.Process(context.Background(), records)

	count := 0
	for result := range results {
		count++
		if result.Error != "" {
			t.Errorf("record %s: unexpected error %q", result.ID, result.Error)
		}
		if !result.ContextFound {
			t.Errorf("record %s: expected context_found", result.ID)
		}
	}
	if count != 10 {
		t.Errorf("expected 10 results, got %d", count)
	}
}

func TestProcessor_ParseErrorsPassThrough(t *testing.T) {
	records := []InputRecord{
		{LineNumber: 1, Request: Question{ID: "ok", Question: "fine"}},
		{LineNumber: 2, Error: errors.New("line 2: invalid JSON")},
	}

	processor := NewProcessor(&stubAnswerer{}, 1, newTestLogger())
	results := processor.Process(context.Background(), records)

	var okCount, errCount int
	for result := range results {
		if result.Error != "" {
			errCount++
		} else {
			okCount++
		}
	}
	if okCount != 1 || errCount != 1 {
		t.Errorf("expected 1 success and 1 error, got %d/%d", okCount, errCount)
	}
}

func TestProcessor_AnswerFailureIsReported(t *testing.T) {
	records := []InputRecord{
		{LineNumber: 1, Request: Question{ID: "q-1", Question: "anything"}},
	}

	processor := NewProcessor(&stubAnswerer{err: errors.New("generation failed")}, 1, newTestLogger())
	results := processor.Process(context.Background(), records)

	for result := range results {
		if result.Error == "" {
			t.Error("expected failure to surface in the output record")
		}
		if result.ID != "q-1" {
			t.Errorf("output must keep the input ID, got %q", result.ID)
		}
	}
}
