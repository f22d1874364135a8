package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/surviveos/ranger/pkg/adapter"
	"github.com/surviveos/ranger/pkg/knowledge"
	"github.com/surviveos/ranger/pkg/model"
	"github.com/surviveos/ranger/pkg/policy"
	"github.com/surviveos/ranger/pkg/repository"
	"github.com/surviveos/ranger/pkg/service/mcp"
	"github.com/surviveos/ranger/pkg/tool"
	"github.com/surviveos/ranger/pkg/tool/kb"
	"github.com/surviveos/ranger/pkg/usecase/assistant"
	"github.com/surviveos/ranger/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values shared across commands
type config struct {
	logLevel string

	// Repository
	project  string
	database string

	// Engine
	geminiProject  string
	geminiLocation string
	modelID        string

	// Assistant
	corpusDir string
	policyDir string
	mcpConfig string
	offline   bool
	emergency string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("RANGER_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "corpus-dir",
			Usage:       "Directory of knowledge corpus YAML files, replacing the built-in corpus",
			Sources:     cli.EnvVars("RANGER_CORPUS_DIR"),
			Destination: &cfg.corpusDir,
		},
	}
}

// repoFlags returns flags for conversation persistence. Without a project the
// in-memory store is used and nothing survives the process.
func repoFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for Firestore persistence",
			Sources:     cli.EnvVars("RANGER_PROJECT", "GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("RANGER_FIRESTORE_DATABASE"),
			Destination: &cfg.database,
		},
	}
}

// engineFlags returns flags for the generation engine
func engineFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("RANGER_GEMINI_PROJECT", "GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("RANGER_GEMINI_LOCATION", "GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "Model ID from the catalog",
			Value:       model.DefaultModelID,
			Sources:     cli.EnvVars("RANGER_MODEL"),
			Destination: &cfg.modelID,
		},
	}
}

// assistantFlags returns flags for the response pipeline
func assistantFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego files overriding the built-in fallback policy",
			Sources:     cli.EnvVars("RANGER_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "mcp-config",
			Usage:       "Path to an MCP server configuration file for external tools",
			Sources:     cli.EnvVars("RANGER_MCP_CONFIG"),
			Destination: &cfg.mcpConfig,
		},
		&cli.BoolFlag{
			Name:        "offline",
			Usage:       "Tell the assistant the device is offline",
			Sources:     cli.EnvVars("RANGER_OFFLINE"),
			Destination: &cfg.offline,
		},
		&cli.StringFlag{
			Name:        "emergency",
			Usage:       "Active emergency mode (lost, injury, wildlife, other)",
			Sources:     cli.EnvVars("RANGER_EMERGENCY"),
			Destination: &cfg.emergency,
		},
	}
}

// setupLogging installs the configured logger as the process default
func (cfg *config) setupLogging() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

// newCorpus loads the corpus, from disk when corpus-dir is set
func (cfg *config) newCorpus() (*knowledge.Corpus, error) {
	if cfg.corpusDir != "" {
		return knowledge.LoadDir(cfg.corpusDir)
	}
	return knowledge.New()
}

// newRepository creates the conversation store. Falls back to the in-memory
// store when no project is configured.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		logging.Default().Debug("no project configured, using in-memory conversation store")
		return repository.NewMemory(), nil
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newEngine creates the Gemini generation engine
func (cfg *config) newEngine(ctx context.Context) (*adapter.GeminiEngine, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	engine, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithDefaultModel(cfg.modelID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create engine")
	}
	return engine, nil
}

// deviceContext builds a static device context from flags, nil when no
// context flag is set
func (cfg *config) deviceContext() model.ContextProvider {
	if !cfg.offline && cfg.emergency == "" {
		return nil
	}

	now := time.Now()
	zone, _ := now.Zone()
	return &model.StaticContextProvider{
		Context: &model.DeviceContext{
			Time: model.TimeContext{
				LocalTime: now.Format("15:04"),
				Timezone:  zone,
			},
			Network: model.NetworkState{IsOffline: cfg.offline},
			User:    model.UserState{EmergencyMode: model.EmergencyType(cfg.emergency)},
		},
	}
}

// newAssistant assembles the full response pipeline
func (cfg *config) newAssistant(ctx context.Context) (*assistant.UseCase, repository.Repository, error) {
	corpus, err := cfg.newCorpus()
	if err != nil {
		return nil, nil, err
	}

	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	engine, err := cfg.newEngine(ctx)
	if err != nil {
		return nil, nil, err
	}

	modelCfg, err := model.LookupModel(cfg.modelID)
	if err != nil {
		return nil, nil, err
	}

	tools := []tool.Tool{kb.New(corpus)}
	if cfg.mcpConfig != "" {
		mcpTool, err := mcp.LoadAndConnect(ctx, cfg.mcpConfig)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to connect MCP servers")
		}
		if mcpTool != nil {
			tools = append(tools, mcpTool)
		}
	}

	var evaluator *policy.Evaluator
	if cfg.policyDir != "" {
		evaluator, err = policy.NewFromDir(ctx, cfg.policyDir)
		if err != nil {
			return nil, nil, err
		}
	}

	uc, err := assistant.New(ctx, assistant.NewInput{
		Engine:   engine,
		Corpus:   corpus,
		Registry: tool.New(tools...),
		Repo:     repo,
		Policy:   evaluator,
		Contexts: cfg.deviceContext(),
		Model:    modelCfg,
	})
	if err != nil {
		return nil, nil, err
	}
	return uc, repo, nil
}
