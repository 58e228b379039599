package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Question is one line of a JSONL batch input file.
type Question struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// InputRecord pairs a parsed question with its source line. Error is set
// when the line could not be parsed or validated; the record is still
// emitted so callers can report every bad line.
type InputRecord struct {
	LineNumber int
	Request    Question
	Error      error
}

type Reader struct {
	input  io.Reader
	logger *zerolog.Logger
}

func NewReader(input io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		input:  input,
		logger: logger,
	}
}

// ReadAll streams records from the input, one per non-blank line. The
// channel is closed when the input is exhausted or ctx is cancelled.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.input)
		lineNumber := 0

		for scanner.Scan() {
			lineNumber++

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := parseLine(lineNumber, line)

			select {
			case out <- record:
			case <-ctx.Done():
				r.logger.Warn().Int("line", lineNumber).Msg("Reader cancelled")
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to read input")
		}
	}()

	return out
}

func parseLine(lineNumber int, line string) InputRecord {
	var q Question
	if err := json.Unmarshal([]byte(line), &q); err != nil {
		return InputRecord{
			LineNumber: lineNumber,
			Error:      fmt.Errorf("line %d: invalid JSON: %w", lineNumber, err),
		}
	}

	if strings.TrimSpace(q.Question) == "" {
		return InputRecord{
			LineNumber: lineNumber,
			Request:    q,
			Error:      fmt.Errorf("line %d: missing question field", lineNumber),
		}
	}

	return InputRecord{
		LineNumber: lineNumber,
		Request:    q,
	}
}
