package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kamusis/skillsmp-cli/internal/format"
	"github.com/kamusis/skillsmp-cli/internal/skillsmp"
)

var installHelperCmd = &cobra.Command{
	Use:   "install-helper <query> [limit]",
	Short: "Find skills and print npx add-skill install commands",
	Long: `Search by keyword (most-starred first) and print each match together with
the add-skill commands needed to install it.

  limit  number of results (default 5)

Set install.agent in ~/.skillsmp/config.yaml to add "-a <agent>" to the
generated install commands.`,
	Example: `  skillsmp install-helper "spring boot"
  skillsmp install-helper react 10`,
	Args: queryArgs(2),
	RunE: runInstallHelper,
}

func init() {
	rootCmd.AddCommand(installHelperCmd)
}

func runInstallHelper(cmd *cobra.Command, args []string) error {
	if err := requireAPIKey(); err != nil {
		return err
	}

	q := skillsmp.SearchQuery{
		Keyword: args[0],
		Page:    skillsmp.DefaultPage,
		Limit:   skillsmp.DefaultInstallLimit,
		SortBy:  skillsmp.SortStars,
	}
	if len(args) > 1 {
		q.Limit = skillsmp.ParseCount(args[1], skillsmp.DefaultInstallLimit)
	}

	p := newPrinter(cmd)
	p.printf("Searching: \"%s\" (top %d, sorted by stars)\n", q.Keyword, q.Limit)

	res, err := newClient().Search(cmd.Context(), q)
	if err != nil {
		return &exitError{code: 1, msg: "error: " + err.Error()}
	}
	if !res.Success {
		msg := res.ErrorMessage()
		if msg == "" {
			msg = "unknown error"
		}
		return &exitError{code: 1, msg: "Search failed: " + msg}
	}
	if len(res.Data.Skills) == 0 {
		p.printf("No matching skills found\n")
		return nil
	}

	opts := format.Options{Agent: settings.InstallAgent}
	return format.NewRenderer(p.out).WriteLines(format.Report(res.Data, opts))
}
