package mcp

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/surviveos/ranger/pkg/knowledge"
)

type lookupParams struct {
	Topic string `json:"topic" jsonschema:"Survival topic: first-aid, water, shelter, navigation, fire, signaling, food, or psychology"`
	Query string `json:"query,omitempty" jsonschema:"Optional question or keyword to search for within the topic"`
}

type cachedAnswerParams struct {
	Question string `json:"question" jsonschema:"The survival question to match against vetted answers"`
}

// NewServer builds an MCP server exposing the knowledge base, so other MCP
// clients can use the same retrieval the assistant uses internally
func NewServer(corpus *knowledge.Corpus) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ranger-knowledge",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "lookup_survival_knowledge",
		Description: "Look up specific survival knowledge from the database: first aid, water, shelter, navigation, fire, signaling, food, psychology.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, params *lookupParams) (*mcp.CallToolResult, any, error) {
		result := corpus.ExecuteTool(knowledge.TopicID(params.Topic), params.Query)
		return textResult(result), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_cached_answer",
		Description: "Find a pre-vetted answer to a common survival question. Returns nothing when no confident match exists.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, params *cachedAnswerParams) (*mcp.CallToolResult, any, error) {
		qa := corpus.FindCachedAnswer(params.Question)
		if qa == nil {
			return textResult("No cached answer matches this question."), nil, nil
		}
		return textResult(qa.Answer), nil, nil
	})

	return server
}

// Serve runs the knowledge server on stdio until the context is canceled
func Serve(ctx context.Context, corpus *knowledge.Corpus) error {
	if err := NewServer(corpus).Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "MCP server terminated")
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
