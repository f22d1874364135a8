package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Transcriber converts recorded speech into a text query
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

const transcribePrompt = "Transcribe this audio recording verbatim. Output only the spoken words, nothing else."

// Transcribe sends the audio to the engine's model and returns the spoken
// text. Gemini handles common formats such as audio/wav, audio/mp3 and
// audio/ogg directly.
func (g *GeminiEngine) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", goerr.New("empty audio input")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribePrompt),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, contents, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to transcribe audio", goerr.V("mime_type", mimeType))
	}

	result := &CompletionResult{}
	collectParts(resp, result)
	return strings.TrimSpace(result.Response), nil
}
