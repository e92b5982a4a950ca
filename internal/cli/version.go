package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MacroPower/fspath/internal/version"
)

func GetVersionString() string {
	rev := version.Revision
	if len(rev) > 12 {
		rev = rev[:12]
	}

	return fmt.Sprintf("%s+%s", version.Version, rev)
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the fspath CLI",
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(GetVersionString())
		},
	}
}
