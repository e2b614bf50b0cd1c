package format

import (
	"regexp"

	"github.com/kamusis/skillsmp-cli/internal/skillsmp"
)

var githubRepoRe = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// RepoRef identifies a GitHub repository as owner/repo.
type RepoRef struct {
	Owner    string
	Repo     string
	FullPath string
}

// ParseRepoRef extracts the owner and repository from the first
// github.com/<owner>/<repo> occurrence in rawURL. Anything after the repo
// segment (tree/branch/path) is ignored.
func ParseRepoRef(rawURL string) (RepoRef, bool) {
	if rawURL == "" {
		return RepoRef{}, false
	}
	m := githubRepoRe.FindStringSubmatch(rawURL)
	if m == nil {
		return RepoRef{}, false
	}
	return RepoRef{Owner: m[1], Repo: m[2], FullPath: m[1] + "/" + m[2]}, true
}

// RepoGroup is one repository and the skill names found in it, in the order
// the search returned them.
type RepoGroup struct {
	FullPath string
	Names    []string
}

// GroupByRepo collects skills that resolve to a GitHub repository, keeping
// repositories in first-seen order. Skills without one are skipped.
func GroupByRepo(skills []skillsmp.SkillRecord) []RepoGroup {
	var groups []RepoGroup
	index := map[string]int{}
	for _, s := range skills {
		ref, ok := ParseRepoRef(s.GitHubURL)
		if !ok {
			continue
		}
		i, seen := index[ref.FullPath]
		if !seen {
			i = len(groups)
			index[ref.FullPath] = i
			groups = append(groups, RepoGroup{FullPath: ref.FullPath})
		}
		groups[i].Names = append(groups[i].Names, s.DisplayName())
	}
	return groups
}
