package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MacroPower/fspath/internal/cli"
)

const (
	cmdName = "fspath"

	shortDesc = "Canonical virtual filesystem paths and path maps."
	longDesc  = `fspath normalizes and manipulates virtual filesystem paths, and queries
path maps: hierarchical maps keyed by canonical paths.

Paths always use "/" as the separator. Backslashes are accepted as
separators, "." and empty components are dropped, and ".." removes the
previous component. A path that climbs above its root is an error.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
