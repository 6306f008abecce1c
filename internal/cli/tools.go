package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools"
)

type toolsOptions struct {
	profile string
	verbose bool
}

// newToolsCmd creates the tools command.
func (a *App) newToolsCmd() *cobra.Command {
	opts := &toolsOptions{}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools a profile exposes",
		Long: `List the MCP tools exposed by a profile. No BambooHR credentials are needed.

Examples:
  # Every tool
  bamboohr-mcp tools

  # Time off tools with descriptions
  bamboohr-mcp tools -p time_off -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listTools(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "all", "Profile to list")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show tool descriptions")

	return cmd
}

func (a *App) listTools(opts *toolsOptions) error {
	if _, ok := tools.ProfileDefinitions[opts.profile]; !ok && opts.profile != "all" {
		return fmt.Errorf("unknown profile: %s", opts.profile)
	}

	names := tools.GetToolsForProfile(opts.profile)
	_, _ = fmt.Fprintf(a.stdout, "Profile %s (%d tools):\n", opts.profile, len(names))

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		reg, ok := tools.GetTool(name)
		if !ok {
			_, _ = fmt.Fprintf(w, "  %s\t(not registered)\n", name)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", name, reg.Title)
		if opts.verbose {
			_, _ = fmt.Fprintf(w, "  \t%s\n", reg.Description)
		}
	}
	return w.Flush()
}
