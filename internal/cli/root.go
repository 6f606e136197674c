// Package cli holds the lmsbridge command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lmsbridge/internal/config"
	"lmsbridge/internal/lmclient"
	"lmsbridge/internal/service"
)

// newBackend builds the facade every command talks to. Tests replace it.
var newBackend = func(cfg config.Config, log zerolog.Logger, pub lmclient.EventPublisher) service.Backend {
	return lmclient.NewWithConfig(cfg.ClientConfig(log, pub))
}

// globals carries persistent flag values and the resolved configuration.
type globals struct {
	configPath string
	logLevel   string
	httpURL    string
	cliBin     string
	output     string

	cfg    config.Config
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// Run parses args and executes the matching command.
func Run(args []string, stdout, stderr io.Writer) error {
	root := buildRootCmd(&globals{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}

func buildRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:           "lmsbridge",
		Short:         "LM Studio control over HTTP with CLI fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (.yaml|.yml|.json|.toml)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults LMSBRIDGE_LOG_LEVEL or info)")
	pf.StringVar(&g.httpURL, "http-url", "", "LM Studio REST base URL")
	pf.StringVar(&g.cliBin, "cli-bin", "", "Path to the lms executable")
	pf.StringVarP(&g.output, "output", "o", "table", "Output format: table|json")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || (cmd.Parent() != nil && cmd.Parent().Name() == "completion") {
			return nil
		}
		return g.resolve(cmd.Name() == "serve")
	}

	root.AddCommand(
		newServeCmd(g),
		newModelsCmd(g),
		newConfigCmd(g),
		newStatusCmd(g),
		newTrainingCmd(g),
		newDoctorCmd(g),
		newCompletionCmd(root, g),
	)
	return root
}

// resolve loads configuration, applies flag overrides and builds the logger.
func (g *globals) resolve(serve bool) error {
	cfg, err := config.Resolve(g.configPath)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.httpURL != "" {
		cfg.HTTP.BaseURL = g.httpURL
	}
	if g.cliBin != "" {
		cfg.CLI.Bin = g.cliBin
		cfg = cfg.WithDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch g.output {
	case "table", "json":
	default:
		return fmt.Errorf("unsupported output format %q", g.output)
	}
	g.cfg = cfg
	g.log = newLogger(cfg, g.stderr, serve)
	return nil
}

// newLogger returns JSON logs for the daemon and console logs for one-shot commands.
func newLogger(cfg config.Config, w io.Writer, serve bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if !serve || cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func (g *globals) services() service.Set {
	return service.NewSet(newBackend(g.cfg, g.log, nil))
}

func newCompletionCmd(root *cobra.Command, g *globals) *cobra.Command {
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(g.stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(g.stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(g.stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(g.stdout) }})
	return completionCmd
}
