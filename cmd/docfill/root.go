package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/config"
	"github.com/goliatone/go-docfill/pkg/preview"
	"github.com/goliatone/go-docfill/pkg/prompt"
	"github.com/goliatone/go-docfill/pkg/session"
)

// app carries the settings resolved from the config file and flags.
type app struct {
	configPath   string
	verbose      bool
	baseURL      string
	timeout      time.Duration
	contractPath string
	theme        string

	// driver replaces the survey prompts when set.
	driver prompt.PromptDriver

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	return newRootCommand(&app{logger: zap.NewNop()})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docfill",
		Short: "Fill document placeholders with a guided assistant",
		Long: `docfill uploads a document to the placeholder extraction backend,
walks you through every detected placeholder and exports the filled copy.

Use --fixture to work offline from a saved upload response.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.baseURL, "base-url", "", "collaborator base URL (overrides config)")
	flags.DurationVar(&a.timeout, "timeout", 0, "collaborator request timeout (overrides config)")
	flags.StringVar(&a.contractPath, "contract", "", "OpenAPI contract describing the collaborator (overrides config)")
	flags.StringVar(&a.theme, "theme", "", "preview theme variant (overrides config)")

	root.AddCommand(newFillCmd(a), newPreviewCmd(a), newServeCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.Collaborator.BaseURL = a.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Collaborator.Timeout = a.timeout
	}
	if flags.Changed("contract") {
		cfg.Collaborator.Contract = a.contractPath
	}
	if flags.Changed("theme") {
		cfg.Preview.Variant = a.theme
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.Log.ZapLevel()
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// client builds the HTTP collaborator, honoring a contract file when one is
// configured.
func (a *app) client(ctx context.Context) (*collab.HTTPClient, error) {
	opts := []collab.ClientOption{
		collab.WithTimeout(a.cfg.Collaborator.Timeout),
		collab.WithLogger(a.logger.Named("collab")),
	}
	if path := a.cfg.Collaborator.Contract; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read contract %s: %w", path, err)
		}
		contract, err := collab.LoadContract(ctx, data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, collab.WithContract(contract))
	}
	return collab.NewHTTPClient(a.cfg.Collaborator.BaseURL, opts...)
}

// sessionOptions maps guide and preview settings onto session options.
func (a *app) sessionOptions() ([]session.Option, error) {
	renderer, err := preview.New(preview.WithPlaceholderFallback(a.cfg.Preview.PlaceholderFallback))
	if err != nil {
		return nil, err
	}
	selector, err := preview.NewThemeSelector(preview.DefaultManifest())
	if err != nil {
		return nil, err
	}
	selection, err := selector.Select(a.cfg.Preview.Theme, a.cfg.Preview.Variant)
	if err != nil {
		return nil, err
	}

	return []session.Option{
		session.WithLogger(a.logger.Named("session")),
		session.WithPacing(a.cfg.Guide.Pacing),
		session.WithHelpText(a.cfg.Guide.HelpText),
		session.WithGenericHint(a.cfg.Guide.GenericHint),
		session.WithPreviewRenderer(renderer),
		session.WithTheme(preview.ThemeConfig(selection)),
	}, nil
}

// manager wires the collaborators. With a fixture, uploads are answered from
// the saved response and the returned StaticUploader can be refreshed.
func (a *app) manager(client *collab.HTTPClient, fixture string) (*session.Manager, *collab.StaticUploader, error) {
	sessionOpts, err := a.sessionOptions()
	if err != nil {
		return nil, nil, err
	}

	var (
		uploader collab.Uploader = client
		static   *collab.StaticUploader
	)
	if fixture != "" {
		result, err := collab.LoadUploadFile(fixture)
		if err != nil {
			return nil, nil, err
		}
		static = collab.NewStaticUploader(result)
		uploader = static
	}

	m := session.NewManager(uploader, client,
		session.WithSessionOptions(sessionOpts...),
		session.WithAlsoPDF(a.cfg.Collaborator.AlsoPDF),
		session.WithManagerLogger(a.logger.Named("manager")),
	)
	return m, static, nil
}

// load uploads path through the manager.
func (a *app) load(ctx context.Context, m *session.Manager, path string) (*session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return m.Load(ctx, filepath.Base(path), f)
}

// writeOutput writes data to path, or to the command's stdout for "" and "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
