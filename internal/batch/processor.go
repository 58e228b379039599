package batch

import (
	"context"
	"sync"

	"github.com/roarlabs/clubgpt/internal/models"
	"github.com/rs/zerolog"
)

// Answerer is the part of the engine the processor needs.
type Answerer interface {
	Answer(ctx context.Context, question string) (models.AnswerResult, error)
}

// OutputRecord is one line of the JSONL batch output.
type OutputRecord struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer,omitempty"`
	Sources      []string `json:"sources,omitempty"`
	ContextFound bool     `json:"context_found"`
	Error        string   `json:"error,omitempty"`
}

type Processor struct {
	answerer Answerer
	workers  int
	logger   *zerolog.Logger
}

func NewProcessor(answerer Answerer, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		answerer: answerer,
		workers:  workers,
		logger:   logger,
	}
}

// Process answers every valid record using a fixed worker pool. Records
// that failed to parse are passed through as error outputs without
// touching the engine.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan OutputRecord {
	in := make(chan InputRecord)
	out := make(chan OutputRecord)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range in {
				out <- p.process(ctx, record)
			}
		}()
	}

	go func() {
		defer close(in)
		for _, record := range records {
			select {
			case in <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Processor) process(ctx context.Context, record InputRecord) OutputRecord {
	if record.Error != nil {
		return OutputRecord{
			ID:       record.Request.ID,
			Question: record.Request.Question,
			Error:    record.Error.Error(),
		}
	}

	result, err := p.answerer.Answer(ctx, record.Request.Question)
	if err != nil {
		p.logger.Error().
			Err(err).
			Int("line", record.LineNumber).
			Str("id", record.Request.ID).
			Msg("Failed to answer question")
		return OutputRecord{
			ID:       record.Request.ID,
			Question: record.Request.Question,
			Error:    err.Error(),
		}
	}

	return OutputRecord{
		ID:           record.Request.ID,
		Question:     result.Question,
		Answer:       result.Answer,
		Sources:      result.Sources,
		ContextFound: result.ContextFound,
	}
}
