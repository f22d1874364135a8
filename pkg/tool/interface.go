package tool

import (
	"context"

	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// Tool is a capability the generation engine can invoke through function
// calling. Built-in tools cover the knowledge base; additional tools can be
// plugged in from MCP servers.
type Tool interface {
	// Spec returns the tool specification for function calling
	Spec() *genai.Tool

	// Execute runs the tool for one function call
	Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error)

	// Prompt returns extra system prompt text for this tool, or an empty
	// string
	Prompt(ctx context.Context) string

	// Flags returns CLI flags for configuring this tool, or nil
	Flags() []cli.Flag
}
