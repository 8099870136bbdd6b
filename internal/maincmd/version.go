package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Version prints the build version and date, same as the --version flag.
func (c *Cmd) Version(ctx context.Context, stdio mainer.Stdio, args []string) error {
	fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
	return nil
}
