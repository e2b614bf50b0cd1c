package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kamusis/skillsmp-cli/internal/skillsmp"
)

var searchCmd = &cobra.Command{
	Use:   "search <query> [page] [limit] [sortBy]",
	Short: "Keyword search of the SkillsMP marketplace",
	Long: `Run a keyword search and print the API response as JSON.

  page    page number (default 1)
  limit   results per page (default 20)
  sortBy  "stars" or "recent"; anything else uses the server's default order

Multi-word queries must be quoted.`,
	Example: `  skillsmp search "spring boot"
  skillsmp search react 2 10 stars`,
	Args: queryArgs(4),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireAPIKey(); err != nil {
		return err
	}

	q := skillsmp.SearchQuery{
		Keyword: args[0],
		Page:    skillsmp.DefaultPage,
		Limit:   skillsmp.DefaultLimit,
	}
	if len(args) > 1 {
		q.Page = skillsmp.ParseCount(args[1], skillsmp.DefaultPage)
	}
	if len(args) > 2 {
		q.Limit = skillsmp.ParseCount(args[2], skillsmp.DefaultLimit)
	}
	if len(args) > 3 {
		q.SortBy = args[3]
	}

	sortLabel := q.SortBy
	if sortLabel == "" {
		sortLabel = "default"
	}
	p := newPrinter(cmd)
	p.printf("Searching: \"%s\"\n", q.Keyword)
	p.printf("Parameters: page=%d, limit=%d, sortBy=%s\n", q.Page, q.Limit, sortLabel)
	p.printf("---\n")

	res, err := newClient().Search(cmd.Context(), q)
	if err != nil {
		return &exitError{code: 1, msg: "error: " + err.Error()}
	}
	return p.writeJSON(res)
}
