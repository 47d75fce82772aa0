package commands

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/jmjoy/varexport"
	"github.com/jmjoy/varexport/jsonvalue"
	"github.com/jmjoy/varexport/yamlvalue"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// A Decoder turns the content of a document into a value
// ready to be exported.
type Decoder func(data []byte) (varexport.Marshaler, error)

// DecodeJSON checks that data is a JSON document and returns it as
// a jsonvalue.Raw.
func DecodeJSON(data []byte) (varexport.Marshaler, error) {
	// walking the document once reports errors before anything
	// gets written.
	if err := varexport.MarshalTo(io.Discard, jsonvalue.Raw(data)); err != nil {
		return nil, err
	}
	return jsonvalue.Raw(data), nil
}

// DecodeYAML parses the first YAML document of data.
func DecodeYAML(data []byte) (varexport.Marshaler, error) {
	n, err := yamlvalue.Parse(data)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// LoadFiles reads and decodes the given files concurrently.
// With one file, the returned value is the file's document. With several
// files, it is a map of documents keyed by file path, in argument order.
func LoadFiles(ctx context.Context, paths []string, decode Decoder) (varexport.Marshaler, error) {
	logger := loggerFrom(ctx)
	docs := make([]varexport.Marshaler, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(p)
			if err != nil {
				return errors.WithStack(err)
			}

			doc, err := decode(data)
			if err != nil {
				return errors.Wrapf(err, "%s", p)
			}

			logger.Debug("decoded file", zap.String("path", p), zap.Int("bytes", len(data)))
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(docs) == 1 {
		return docs[0], nil
	}

	m := make(varexport.Map, len(paths))
	for i, p := range paths {
		m[i] = varexport.Pair{Key: p, Value: docs[i]}
	}
	return m, nil
}

func newConvertCommand(name, format string, decode Decoder) *cli.Command {
	cmd := cli.Command{
		Name:      name,
		Usage:     "Converts " + format + " documents to var_export literals",
		UsageText: "varexport " + name + " [options] [files...]",
		Description: `The ` + name + ` command reads ` + format + ` documents and writes them as PHP var_export literals.

Without files, the document is read from the standard input:

$ echo '` + example(name) + `' | varexport ` + name + `

With several files, the output is an array of documents keyed by file path:

$ varexport ` + name + ` a.` + name + ` b.` + name + `

The output can be a PHP file ready to be included:

$ varexport ` + name + ` --php-file -o config.php config.` + name,
		Flags: outputFlags(),
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		var v varexport.Marshaler

		paths := cmd.Args().Slice()
		if len(paths) == 0 {
			data, err := io.ReadAll(reader(cmd))
			if err != nil {
				return errors.WithStack(err)
			}
			loggerFrom(ctx).Debug("read standard input", zap.Int("bytes", len(data)))

			v, err = decode(data)
			if err != nil {
				return err
			}
		} else {
			var err error
			v, err = LoadFiles(ctx, paths, decode)
			if err != nil {
				return err
			}
		}

		return export(ctx, cmd, v)
	}

	return &cmd
}

func example(name string) string {
	if name == "json" {
		return `{"a": 1}`
	}
	return `a: 1`
}

// NewJSONCommand returns a cli.Command for "varexport json".
func NewJSONCommand() *cli.Command {
	return newConvertCommand("json", "JSON", DecodeJSON)
}

// NewYAMLCommand returns a cli.Command for "varexport yaml".
func NewYAMLCommand() *cli.Command {
	return newConvertCommand("yaml", "YAML", DecodeYAML)
}
