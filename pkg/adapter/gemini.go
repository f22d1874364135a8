package adapter

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/model"
	"google.golang.org/genai"
)

// GeminiEngine implements Engine on top of the Gemini API
type GeminiEngine struct {
	client       *genai.Client
	defaultModel string
}

type GeminiOption func(*GeminiEngine)

// WithDefaultModel overrides the model used when a request does not name one
func WithDefaultModel(model string) GeminiOption {
	return func(g *GeminiEngine) {
		g.defaultModel = model
	}
}

// NewGemini creates a Gemini-backed engine on the Vertex AI backend
func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiEngine{
		client:       client,
		defaultModel: model.DefaultModelID,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Complete runs one generation round. It streams when the request carries an
// OnToken callback, otherwise it performs a single blocking call.
func (g *GeminiEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = g.defaultModel
	}

	contents, err := toContents(req.Messages)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = req.MaxTokens
	}
	if len(req.Tools) > 0 {
		config.Tools = req.Tools
	}

	if req.OnToken != nil {
		return g.stream(ctx, modelID, contents, config, req.OnToken)
	}

	started := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, modelID, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", modelID))
	}

	result := &CompletionResult{}
	collectParts(resp, result)
	result.Metrics = buildMetrics(started, started, time.Now(), usageTokens(resp))
	return result, nil
}

func (g *GeminiEngine) stream(ctx context.Context, modelID string, contents []*genai.Content, config *genai.GenerateContentConfig, onToken func(string)) (*CompletionResult, error) {
	started := time.Now()
	firstToken := time.Time{}
	result := &CompletionResult{}
	tokens := 0

	for resp, err := range g.client.Models.GenerateContentStream(ctx, modelID, contents, config) {
		if err != nil {
			return nil, goerr.Wrap(err, "failed to stream content", goerr.V("model", modelID))
		}

		before := len(result.Response)
		collectParts(resp, result)
		if chunk := result.Response[before:]; chunk != "" {
			if firstToken.IsZero() {
				firstToken = time.Now()
			}
			onToken(chunk)
		}
		if n := usageTokens(resp); n > 0 {
			tokens = n
		}
	}

	if firstToken.IsZero() {
		firstToken = time.Now()
	}
	result.Metrics = buildMetrics(started, firstToken, time.Now(), tokens)
	return result, nil
}

// toContents converts engine messages into genai contents, mapping the
// assistant role onto the model role
func toContents(messages []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		switch m.Role {
		case RoleUser:
		case RoleAssistant:
			role = genai.RoleModel
		default:
			return nil, goerr.New("unknown message role", goerr.V("role", m.Role))
		}

		parts := []*genai.Part{genai.NewPartFromText(m.Content)}
		for _, a := range m.Attachments {
			parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}
	return contents, nil
}

// collectParts appends response text and function calls into the result
func collectParts(resp *genai.GenerateContentResponse, result *CompletionResult) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				result.Response += part.Text
			}
			if part.FunctionCall != nil {
				result.FunctionCalls = append(result.FunctionCalls, FunctionCall{
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
			}
		}
	}
}

func usageTokens(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata == nil {
		return 0
	}
	return int(resp.UsageMetadata.TotalTokenCount)
}

func buildMetrics(started, firstToken, finished time.Time, tokens int) model.PerformanceMetrics {
	m := model.PerformanceMetrics{
		TotalTimeMs:        finished.Sub(started).Milliseconds(),
		TimeToFirstTokenMs: firstToken.Sub(started).Milliseconds(),
		TotalTokens:        tokens,
	}
	if secs := finished.Sub(started).Seconds(); secs > 0 && tokens > 0 {
		m.TokensPerSecond = float64(tokens) / secs
	}
	return m
}
