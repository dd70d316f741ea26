// Command elements renders the demo components to static pages and serves
// them as live sessions.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/elements/internal/config"
	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/reactive"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var coded *errors.Error
		if errors.As(err, &coded) {
			fmt.Fprint(os.Stderr, coded.Format())
		} else {
			errorMsg("%s", err)
		}
		os.Exit(1)
	}
}

// app carries state shared by subcommands once the root has loaded config.
type app struct {
	configPath string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "elements",
		Short: "Reactive custom elements rendered in Go",
		Long: `elements renders reactive custom elements on the server and keeps
them live in the browser over a WebSocket.

  • render  writes the server-generated demo page to a directory or S3
  • serve   runs live sessions of the demo page with /metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default ./"+config.ConfigFileName+")")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		renderCmd(a),
		serveCmd(a),
		versionCmd(),
	)
	return root
}

// load reads configuration and installs the process-wide logger.
func (a *app) load() error {
	if a.noColor {
		color.NoColor = true
		errors.DisableColors()
	}

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}
	a.cfg.Apply()

	a.logger = a.cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(a.logger)
	reactive.SetLogger(a.logger)
	return nil
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(color.Output, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(color.Output, "  %s\n", faint(fmt.Sprintf(format, args...)))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(color.Output, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}
