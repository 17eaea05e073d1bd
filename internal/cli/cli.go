package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/fxbuild/internal/app"
	"github.com/vk/fxbuild/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("fxbuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
fxbuild - Bundles a game server resource and hot-reloads it while you edit.

Usage:
  fxbuild [options] [RESOURCE_DIR]

Arguments:
  RESOURCE_DIR
    Directory holding manifest.json and src/. Defaults to the current directory.

Environment:
  RCON_PWD
    Remote console password. May also be set in the .env file.

Options:
`)
		flagSet.PrintDefaults()
	}

	modeFlag := flagSet.String("mode", string(app.ModeDevelopment), "Operating mode. Options: 'development' (watch and reload) or 'production' (build once).")
	rootFlag := flagSet.String("root", "", "Resource directory (overrides RESOURCE_DIR).")
	projectFlag := flagSet.String("config", config.DefaultFile, "Project file, relative to the resource directory.")
	envFileFlag := flagSet.String("env-file", ".env", "Env file loaded before reading the environment. Missing files are ignored.")
	resourceFlag := flagSet.String("resource", "", "Resource name used in ensure commands. Defaults to package.json name.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server in development mode. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	root := "."
	if *rootFlag != "" {
		root = *rootFlag
	} else if flagSet.NArg() > 0 {
		root = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[1:], " "))}
	}
	slog.Debug("Resource directory determined.", "root", root)

	mode, err := app.ParseMode(strings.ToLower(*modeFlag))
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		Root:            root,
		ProjectFile:     *projectFlag,
		EnvFile:         *envFileFlag,
		Mode:            mode,
		ResourceName:    *resourceFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
