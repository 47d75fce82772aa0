package commands

import (
	"context"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// NewApp creates the varexport CLI app.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:                  "varexport",
		Usage:                 "Converts JSON, YAML or Pebble data to PHP var_export literals",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "log what the command does on STDERR.",
				Sources: cli.EnvVars("VAREXPORT_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger := zap.NewNop()
			if cmd.Bool("verbose") {
				l, err := zap.NewDevelopment()
				if err != nil {
					return ctx, err
				}
				logger = l
			}

			return withLogger(ctx, logger), nil
		},
		Commands: []*cli.Command{
			NewJSONCommand(),
			NewYAMLCommand(),
			NewPebbleCommand(),
			NewVersionCommand(),
		},
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// loggerFrom returns the logger set up by the root command,
// or a no-op logger.
func loggerFrom(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
