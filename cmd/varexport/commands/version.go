package commands

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// NewVersionCommand returns a cli.Command for "varexport version".
func NewVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Shows the varexport version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := writer(cmd)

			info, ok := debug.ReadBuildInfo()
			if !ok {
				_, err := fmt.Fprintln(w, `version not available in GOPATH mode; use "go install" with Go modules enabled`)
				return err
			}

			_, err := fmt.Fprintf(w, "varexport %v\n", info.Main.Version)
			return err
		},
	}
}
