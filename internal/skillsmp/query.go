package skillsmp

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Kind selects which endpoint contract a query is built for.
type Kind int

const (
	// KindKeyword targets the keyword search endpoint.
	KindKeyword Kind = iota
	// KindAI targets the AI semantic search endpoint.
	KindAI
)

// Sort keys accepted by the keyword search endpoint.
const (
	SortStars  = "stars"
	SortRecent = "recent"
)

// Defaults applied to absent or unusable numeric arguments.
const (
	DefaultPage         = 1
	DefaultLimit        = 20
	DefaultInstallLimit = 5
)

// ErrMissingQuery is returned when the search text is empty after trimming.
var ErrMissingQuery = errors.New("search query is required")

// SearchQuery holds the parameters of one search request.
type SearchQuery struct {
	Keyword string
	Page    int
	Limit   int
	SortBy  string
}

// ValidSortKey reports whether s is a sort key the API understands.
func ValidSortKey(s string) bool {
	return s == SortStars || s == SortRecent
}

// BuildQuery assembles the query parameters for kind.
//
// Page and limit below 1 fall back to their defaults. Limit has no upper
// bound here; the server enforces its own cap. An unrecognised SortBy is
// dropped rather than rejected.
func BuildQuery(kind Kind, q SearchQuery) (url.Values, error) {
	keyword := strings.TrimSpace(q.Keyword)
	if keyword == "" {
		return nil, ErrMissingQuery
	}
	params := url.Values{}
	params.Set("q", keyword)
	if kind == KindAI {
		return params, nil
	}

	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if ValidSortKey(q.SortBy) {
		params.Set("sortBy", q.SortBy)
	}
	return params, nil
}

// ParseCount reads a positional numeric argument the lenient way: leading
// digits are used ("3rd" → 3), and anything without digits or below 1 yields def.
func ParseCount(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return def
	}
	return n
}

// JoinArgs joins positional arguments into one query string.
func JoinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
