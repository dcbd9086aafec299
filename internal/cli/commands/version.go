package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dbcomments/pkg/comments"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display dbcomments version and the database engines comments are written for.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dbcomments v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Comment engines: %s\n", strings.Join(comments.AllowedEngines(), ", "))
		},
	}
}
