// Package format turns search results into the human-readable install
// report printed by install-helper.
package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"

	"github.com/kamusis/skillsmp-cli/internal/skillsmp"
)

const (
	// DescriptionWidth is the number of characters of a description shown
	// before it is cut off.
	DescriptionWidth = 80

	ResultsHeader = "=== Search Results ==="
	InstallHeader = "=== Quick Install Commands ==="

	unknownAuthor = "Unknown"
)

// Options tunes the generated install commands.
type Options struct {
	// Agent, when set, is passed to add-skill as `-a <agent>`.
	Agent string
}

func (o Options) installFlags() string {
	if o.Agent == "" {
		return "-g -y"
	}
	return "-g -a " + o.Agent + " -y"
}

// Truncate shortens s to n characters and appends "..." when anything was
// cut. Characters are counted after NFC normalisation so combining sequences
// are not split.
func Truncate(s string, n int) string {
	s = norm.NFC.String(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// FormatResults renders one block per skill, in the order given.
func FormatResults(skills []skillsmp.SkillRecord, opts Options) []string {
	var lines []string
	for i, s := range skills {
		author := s.Author
		if author == "" {
			author = unknownAuthor
		}
		lines = append(lines,
			fmt.Sprintf("[%d] %s", i+1, s.DisplayName()),
			"    Author: "+author,
			fmt.Sprintf("    ⭐ Stars: %d", s.Stars),
		)
		if s.Description != "" {
			lines = append(lines, "    Description: "+Truncate(s.Description, DescriptionWidth))
		}
		if ref, ok := ParseRepoRef(s.GitHubURL); ok {
			lines = append(lines,
				"    GitHub: "+s.GitHubURL,
				"    Install: npx add-skill "+ref.FullPath+" --list",
			)
		} else if s.SkillURL != "" {
			lines = append(lines, "    SkillsMP: "+s.SkillURL)
		}
		lines = append(lines, "")
	}
	return lines
}

// InstallCommands renders the consolidated install block for each repository.
func InstallCommands(groups []RepoGroup, opts Options) []string {
	flags := opts.installFlags()
	var lines []string
	for _, g := range groups {
		lines = append(lines,
			"# Repository: "+g.FullPath,
			"# List all skills:",
			"npx add-skill "+g.FullPath+" --list",
			"",
			"# Install all skills:",
			"npx add-skill "+g.FullPath+" "+flags,
			"",
		)
		if len(g.Names) > 0 {
			lines = append(lines, "# Install a specific skill:")
			for _, name := range g.Names {
				lines = append(lines, fmt.Sprintf(`npx add-skill %s --skill "%s" %s`, g.FullPath, name, flags))
			}
		}
		lines = append(lines, "")
	}
	return lines
}

// Total returns the number of matches the server reported, or the number of
// skills on the page when it reported none.
func Total(payload *skillsmp.SearchPayload) int {
	if payload.Pagination.Total > 0 {
		return payload.Pagination.Total
	}
	return len(payload.Skills)
}

// TotalLine formats the closing summary with grouped digits.
func TotalLine(total int) string {
	return message.NewPrinter(language.English).Sprintf("Found %d matching skills in total", total)
}

// Report assembles the complete install-helper output for a successful,
// non-empty search.
func Report(payload *skillsmp.SearchPayload, opts Options) []string {
	lines := []string{"", ResultsHeader, ""}
	lines = append(lines, FormatResults(payload.Skills, opts)...)

	if groups := GroupByRepo(payload.Skills); len(groups) > 0 {
		lines = append(lines, InstallHeader, "")
		lines = append(lines, InstallCommands(groups, opts)...)
	}
	return append(lines, TotalLine(Total(payload)))
}

// IsHeader reports whether line is a section header.
func IsHeader(line string) bool {
	return strings.HasPrefix(line, "=== ") && strings.HasSuffix(line, " ===")
}
