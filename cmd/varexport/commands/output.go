package commands

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jmjoy/varexport"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// OutputOptions controls how a value is written by the commands.
type OutputOptions struct {
	// Indent is written once per nesting level.
	Indent string
	// PHPFile wraps the value in a PHP file returning it.
	PHPFile bool
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "name of the file to output to. Defaults to STDOUT.",
		},
		&cli.StringFlag{
			Name:    "indent",
			Value:   "  ",
			Usage:   "indentation of each nesting level.",
			Sources: cli.EnvVars("VAREXPORT_INDENT"),
		},
		&cli.BoolFlag{
			Name:    "php-file",
			Usage:   "output a PHP file returning the value.",
			Sources: cli.EnvVars("VAREXPORT_PHP_FILE"),
		},
	}
}

// Export writes v to w, followed by a newline.
func Export(w io.Writer, v any, opts OutputOptions) error {
	if opts.PHPFile {
		if _, err := io.WriteString(w, "<?php\n\nreturn "); err != nil {
			return errors.WithStack(err)
		}
	}

	enc := varexport.NewEncoder(w)
	enc.SetIndent(opts.Indent)
	if err := enc.Encode(v); err != nil {
		return err
	}

	end := "\n"
	if opts.PHPFile {
		end = ";\n"
	}
	_, err := io.WriteString(w, end)
	return errors.WithStack(err)
}

// export writes v where the command flags tell it to.
func export(ctx context.Context, cmd *cli.Command, v any) error {
	opts := OutputOptions{
		Indent:  cmd.String("indent"),
		PHPFile: cmd.Bool("php-file"),
	}

	w := writer(cmd)
	if f := cmd.String("output"); f != "" {
		file, err := os.Create(f)
		if err != nil {
			return errors.WithStack(err)
		}
		defer file.Close()

		w = file
		loggerFrom(ctx).Debug("writing output", zap.String("path", f))
	}

	return Export(w, v, opts)
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
