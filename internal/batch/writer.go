package batch

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
)

// Writer emits one JSON object per line.
type Writer struct {
	encoder *json.Encoder
	logger  *zerolog.Logger
}

func NewWriter(output io.Writer, logger *zerolog.Logger) *Writer {
	return &Writer{
		encoder: json.NewEncoder(output),
		logger:  logger,
	}
}

func (w *Writer) Write(record OutputRecord) error {
	return w.encoder.Encode(record)
}
