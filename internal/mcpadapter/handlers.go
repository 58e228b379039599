package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roarlabs/clubgpt/internal/engine"
	"github.com/roarlabs/clubgpt/internal/models"
)

// AskInput is the MCP tool input schema (matches HTTP API field names).
type AskInput struct {
	Question string `json:"question" jsonschema:"natural-language question about the club's matches"`
}

// NewAskHandler returns a tool handler that uses the given engine.
// Pass the returned function to mcp.AddTool.
func NewAskHandler(eng *engine.Engine) func(context.Context, *mcp.CallToolRequest, AskInput) (*mcp.CallToolResult, models.AnswerResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, models.AnswerResult, error) {
		return Ask(ctx, eng, req, input)
	}
}

// Ask runs the question-answering pipeline and returns the result.
func Ask(
	ctx context.Context,
	eng *engine.Engine,
	req *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, models.AnswerResult, error) {
	result, err := eng.Answer(ctx, input.Question)
	return nil, result, err
}
