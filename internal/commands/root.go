package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-parser/internal/appcontext"
	"github.com/insightdelivered/statement-parser/internal/buildinfo"
	"github.com/insightdelivered/statement-parser/internal/config"
	"github.com/insightdelivered/statement-parser/internal/pipeline"
)

// app is the state shared by subcommands once the root command has loaded
// configuration.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "statement-parser",
		Short: "Extract transactions from bank statements",
		Long: `Extract transactions from bank statements.

Reads CSV exports, XLSX workbooks, PDF statements and pasted text, and
writes normalized transactions (date, description, debit/credit, amount)
with a confidence score and review warnings for each.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a statement-parser.yaml config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newParseCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newBanksCommand(a))

	return rootCmd
}

// setup loads configuration, builds the logger and stores it on the
// command context.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(cmd.Context())
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	cmd.SetContext(appcontext.WithLogger(cmd.Context(), a.logger))
	return nil
}

// engine builds the parsing engine from the loaded configuration.
func (a *app) engine() (*pipeline.Engine, error) {
	reg, err := a.cfg.Registry()
	if err != nil {
		return nil, err
	}
	return pipeline.New(reg, a.cfg.ParserOptions()), nil
}
