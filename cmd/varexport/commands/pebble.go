package commands

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/jmjoy/varexport/pebblevalue"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// NewPebbleCommand returns a cli.Command for "varexport pebble".
func NewPebbleCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "pebble",
		Usage:     "Outputs a range of a Pebble database",
		UsageText: `varexport pebble [options] dbpath`,
		Description: `The pebble command opens a Pebble database read-only and writes the keys
starting with a prefix as a var_export array:

$ varexport pebble --prefix user/ --trim-prefix my.db`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Usage:   "prefix of the keys to output. Defaults to all keys.",
			},
			&cli.BoolFlag{
				Name:  "trim-prefix",
				Usage: "remove the prefix from the keys.",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output values holding JSON documents as arrays.",
			},
		}, outputFlags()...),
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		dbPath := cmd.Args().First()
		if dbPath == "" {
			return errors.New(cmd.UsageText)
		}

		db, err := pebble.Open(dbPath, &pebble.Options{ReadOnly: true})
		if err != nil {
			return errors.Wrapf(err, "cannot open %s", dbPath)
		}
		defer db.Close()

		loggerFrom(ctx).Debug("opened pebble database", zap.String("path", dbPath), zap.String("prefix", cmd.String("prefix")))

		return export(ctx, cmd, pebblevalue.Range{
			Reader:     db,
			Prefix:     []byte(cmd.String("prefix")),
			TrimPrefix: cmd.Bool("trim-prefix"),
			JSON:       cmd.Bool("json"),
		})
	}

	return &cmd
}
