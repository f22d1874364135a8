package tool

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

var ErrToolNotFound = goerr.New("tool not found")

// Registry holds the tools offered to the engine and routes function calls
// back to them by declared function name
type Registry struct {
	byName   map[string]Tool
	allTools []Tool
	specs    []*genai.Tool
}

// New creates a registry from the given tools. Tools without function
// declarations are kept for their prompts and flags but are never routed to.
func New(tools ...Tool) *Registry {
	r := &Registry{
		byName:   make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		spec := t.Spec()
		if spec == nil || len(spec.FunctionDeclarations) == 0 {
			continue
		}
		r.specs = append(r.specs, spec)
		for _, fd := range spec.FunctionDeclarations {
			r.byName[fd.Name] = t
		}
	}

	return r
}

// Specs returns the tool specifications to attach to a generation request
func (r *Registry) Specs() []*genai.Tool {
	return r.specs
}

// Names lists the declared function names in registration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for _, spec := range r.specs {
		for _, fd := range spec.FunctionDeclarations {
			names = append(names, fd.Name)
		}
	}
	return names
}

// Prompts concatenates the extra prompt text of every tool
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.allTools {
		if prompt := t.Prompt(ctx); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Flags combines the CLI flags of every tool
func (r *Registry) Flags() []cli.Flag {
	var flags []cli.Flag
	for _, t := range r.allTools {
		if toolFlags := t.Flags(); toolFlags != nil {
			flags = append(flags, toolFlags...)
		}
	}
	return flags
}

// Execute routes a function call to the owning tool
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	t, ok := r.byName[fc.Name]
	if !ok {
		return nil, goerr.Wrap(ErrToolNotFound, "no tool declares this function", goerr.V("name", fc.Name))
	}

	return t.Execute(ctx, fc)
}
