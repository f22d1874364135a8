// Package kb exposes the survival knowledge base as a function-calling tool.
package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// FunctionName is the name the engine calls to retrieve knowledge
const FunctionName = "lookup_survival_knowledge"

var validTopics = []string{
	"first-aid", "water", "shelter", "navigation",
	"fire", "signaling", "food", "psychology",
}

type lookupInput struct {
	Topic string `json:"topic"`
	Query string `json:"query"`
}

type kb struct {
	corpus *knowledge.Corpus
}

// New creates the knowledge lookup tool
func New(corpus *knowledge.Corpus) *kb {
	return &kb{corpus: corpus}
}

// Flags returns CLI flags for this tool
func (x *kb) Flags() []cli.Flag {
	return nil
}

// Prompt returns additional information to be added to the system prompt
func (x *kb) Prompt(ctx context.Context) string {
	return `When a question needs detailed survival procedures, call the lookup_survival_knowledge tool before answering and base your answer on what it returns.`
}

// Spec returns the tool specification for function calling
func (x *kb) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        FunctionName,
				Description: "Look up specific survival knowledge from the database. Use this when you need accurate information about first aid, water purification, shelter building, navigation, fire starting, signaling for rescue, food foraging, or survival psychology.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"topic": {
							Type:        genai.TypeString,
							Description: "The survival topic to look up",
							Enum:        validTopics,
						},
						"query": {
							Type:        genai.TypeString,
							Description: "Specific question or keyword to search for within the topic",
						},
					},
					Required: []string{"topic"},
				},
			},
		},
	}
}

// Execute runs a knowledge lookup. Topic validation failures travel back to
// the engine as tool output rather than as errors, so it can correct itself.
func (x *kb) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	paramsJSON, err := json.Marshal(fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal function arguments")
	}

	var input lookupInput
	if err := json.Unmarshal(paramsJSON, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input parameters")
	}

	result := x.lookup(input)

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": result},
	}, nil
}

func (x *kb) lookup(input lookupInput) string {
	if !isValidTopic(input.Topic) {
		return fmt.Sprintf("Invalid topic %q. Valid topics: %s", input.Topic, strings.Join(validTopics, ", "))
	}
	return x.corpus.ExecuteTool(knowledge.TopicID(input.Topic), input.Query)
}

func isValidTopic(topic string) bool {
	for _, t := range validTopics {
		if t == topic {
			return true
		}
	}
	return false
}
