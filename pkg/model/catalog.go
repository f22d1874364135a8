package model

import "github.com/m-mizutani/goerr/v2"

var ErrUnknownModel = goerr.New("unknown model")

// ModelConfig describes a generation model available to the assistant.
// Quality and Speed are coarse 1-5 ratings for display.
type ModelConfig struct {
	ID          string
	Name        string
	Description string
	Size        string
	Quality     int
	Speed       int
	ContextSize int32

	SupportsVision bool

	// SupportsToolCalling enables the dynamic retrieval path. Disabled on
	// every shipped model; the static-injection fallback is taken instead.
	SupportsToolCalling bool
}

// DefaultModelID is the model used when none is specified
const DefaultModelID = "gemini-2.5-flash-lite"

// Catalog lists the shipped model configurations in display order
var Catalog = []ModelConfig{
	{
		ID:          "gemini-2.5-flash-lite",
		Name:        "Gemini 2.5 Flash Lite",
		Description: "Smallest hosted model. Fast, low cost, good for quick questions.",
		Size:        "hosted",
		Quality:     3,
		Speed:       5,
		ContextSize: 2048,
	},
	{
		ID:          "gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash",
		Description: "Balanced quality and speed. Recommended.",
		Size:        "hosted",
		Quality:     4,
		Speed:       4,
		ContextSize: 4096,

		SupportsVision: true,
	},
	{
		ID:          "gemini-2.5-pro",
		Name:        "Gemini 2.5 Pro",
		Description: "Highest quality. Slower and more expensive.",
		Size:        "hosted",
		Quality:     5,
		Speed:       2,
		ContextSize: 8192,

		SupportsVision: true,
	},
}

// LookupModel finds a model configuration by ID
func LookupModel(id string) (*ModelConfig, error) {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i], nil
		}
	}
	return nil, goerr.Wrap(ErrUnknownModel, "model not in catalog", goerr.V("id", id))
}
