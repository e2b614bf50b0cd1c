package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kamusis/skillsmp-cli/internal/skillsmp"
)

var aiSearchCmd = &cobra.Command{
	Use:   "ai-search <query...>",
	Short: "AI semantic search of the SkillsMP marketplace",
	Long: `Describe what you need in plain language; all arguments are joined into
one query. The API response is printed as JSON.`,
	Example: `  skillsmp ai-search how to write better commit messages`,
	Args:    queryArgs(0),
	RunE:    runAISearch,
}

func init() {
	rootCmd.AddCommand(aiSearchCmd)
}

func runAISearch(cmd *cobra.Command, args []string) error {
	if err := requireAPIKey(); err != nil {
		return err
	}

	query := skillsmp.JoinArgs(args)
	p := newPrinter(cmd)
	p.printf("Running AI semantic search: \"%s\"\n", query)
	p.printf("---\n")

	res, err := newClient().AISearch(cmd.Context(), query)
	if err != nil {
		return &exitError{code: 1, msg: "error: " + err.Error()}
	}
	return p.writeJSON(res)
}
