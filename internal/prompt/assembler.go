// Package prompt builds the final text payload sent to the generation API:
// system instruction, retrieved chunk texts in rank order, then the question.
package prompt

import (
	"errors"
	"strings"

	"github.com/roarlabs/clubgpt/internal/models"
)

// ErrPromptTooLarge is returned when the system instruction and the question
// alone exceed the budget. Chunks can be dropped to fit; user input cannot.
var ErrPromptTooLarge = errors.New("system instruction and question exceed the prompt budget")

const (
	dataHeader   = "Here is the club's match data:"
	noDataNotice = "No match data matched this question."
	questionSep  = "---"
)

// Prompt is the assembled payload plus the chunk IDs that made it in.
type Prompt struct {
	Text    string
	Sources []string
}

type Assembler struct {
	system   string
	maxChars int
}

// NewAssembler builds an assembler with a fixed system instruction and a
// character budget.
func NewAssembler(system string, maxChars int) *Assembler {
	return &Assembler{system: system, maxChars: maxChars}
}

// Assemble concatenates system instruction, retrieved chunks and question.
// Chunks are added in rank order until the budget is hit; everything after
// the first chunk that does not fit is dropped. The result never exceeds
// maxChars.
func (a *Assembler) Assemble(question string, retrieved []models.ScoredChunk) (Prompt, error) {
	scaffold := a.system + "\n\n" + dataHeader + "\n\n" +
		"\n\n" + questionSep + "\n\nQuestion: " + question + "\n"
	budget := a.maxChars - len(scaffold)
	if budget < 0 {
		return Prompt{}, ErrPromptTooLarge
	}

	var (
		included []string
		sources  []string
		used     int
	)
	for _, sc := range retrieved {
		cost := len(sc.Chunk.Text)
		if len(included) > 0 {
			cost += 2 // joining blank line
		}
		if used+cost > budget {
			break
		}
		included = append(included, sc.Chunk.Text)
		sources = append(sources, sc.Chunk.ID)
		used += cost
	}

	var b strings.Builder
	b.WriteString(a.system)
	b.WriteString("\n\n")
	b.WriteString(dataHeader)
	b.WriteString("\n\n")
	if len(included) == 0 {
		if budget >= len(noDataNotice) {
			b.WriteString(noDataNotice)
		}
	} else {
		b.WriteString(strings.Join(included, "\n\n"))
	}
	b.WriteString("\n\n")
	b.WriteString(questionSep)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n")

	return Prompt{Text: b.String(), Sources: sources}, nil
}
