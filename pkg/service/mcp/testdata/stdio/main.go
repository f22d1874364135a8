package main

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// weatherParams defines the parameters for the weather_report tool
type weatherParams struct {
	Area string `json:"area" jsonschema:"Area to report weather for"`
}

// weatherReport returns a canned forecast, standing in for a real external
// weather tool in transport tests
func weatherReport(ctx context.Context, req *mcp.CallToolRequest, params *weatherParams) (*mcp.CallToolResult, any, error) {
	area := params.Area
	if area == "" {
		area = "camp"
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: area + ": clear, 12C, wind 15km/h NW"},
		},
	}, nil, nil
}

func main() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "test-stdio-server",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "weather_report",
		Description: "Report current weather for an area",
	}, weatherReport)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
