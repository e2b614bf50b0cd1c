package cmd

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kamusis/skillsmp-cli/internal/config"
)

const testAPIKey = "sk_live_skillsmp_cmdtest42"

// useTempHome points HOME and SKILLSMP_HOME at a fresh directory and clears
// every SkillsMP variable inherited from the environment.
func useTempHome(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	home := filepath.Join(tmp, ".skillsmp")
	t.Setenv("HOME", tmp)
	t.Setenv("USERPROFILE", tmp)
	t.Setenv(config.HomeEnv, home)
	t.Setenv(config.APIKeyEnv, "")
	t.Setenv(config.BaseURLEnv, "")
	return home
}

// fakeAPI serves body for every request and records what it received.
type fakeAPI struct {
	*httptest.Server
	hits  atomic.Int32
	query atomic.Value // url.Values
	path  atomic.Value // string
	auth  atomic.Value // string
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.query.Store(r.URL.Query())
		f.path.Store(r.URL.Path)
		f.auth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.Close)
	t.Setenv(config.BaseURLEnv, f.URL)
	return f
}

func (f *fakeAPI) lastQuery() url.Values {
	v, _ := f.query.Load().(url.Values)
	return v
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	flagConfig, flagDebug, setupPrompt, setupAgent = "", false, false, ""
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	closeRuntime()
	settings = nil
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}

const oneSkillBody = `{"success":true,"data":{"skills":[{"id":"s1","author":"a","stars":10,"githubUrl":"https://github.com/x/y"}],"pagination":{"total":1,"page":1,"limit":5}}}`

func TestSearch_NoArgsExitsWithoutRequest(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	api := newFakeAPI(t, http.StatusOK, oneSkillBody)

	_, _, err := runCLI(t, "", "search")
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1 (err=%v)", exitCode(err), err)
	}
	if !strings.Contains(err.Error(), "usage: skillsmp search") {
		t.Errorf("error should carry usage, got %q", err.Error())
	}
	if n := api.hits.Load(); n != 0 {
		t.Errorf("expected no API calls, got %d", n)
	}
}

func TestSearchCommands_MissingKeyIsFatal(t *testing.T) {
	useTempHome(t)
	api := newFakeAPI(t, http.StatusOK, oneSkillBody)

	for _, args := range [][]string{
		{"search", "react"},
		{"ai-search", "react"},
		{"install-helper", "react"},
	} {
		_, _, err := runCLI(t, "", args...)
		if exitCode(err) != 1 {
			t.Errorf("%v: exit code = %d, want 1", args, exitCode(err))
			continue
		}
		if !strings.Contains(err.Error(), "skillsmp setup") {
			t.Errorf("%v: error should point at setup, got %q", args, err.Error())
		}
	}
	if n := api.hits.Load(); n != 0 {
		t.Errorf("expected no API calls, got %d", n)
	}
}

func TestSearch_PrintsHeaderAndJSON(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	api := newFakeAPI(t, http.StatusOK, oneSkillBody)

	out, _, err := runCLI(t, "", "search", "spring boot", "2", "abc", "recent")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	for _, want := range []string{
		`Searching: "spring boot"`,
		"Parameters: page=2, limit=20, sortBy=recent",
		"---",
		`"success": true`,
		`"stars": 10`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	q := api.lastQuery()
	if q.Get("q") != "spring boot" || q.Get("page") != "2" || q.Get("limit") != "20" || q.Get("sortBy") != "recent" {
		t.Errorf("unexpected query: %v", q)
	}
	if got := api.auth.Load(); got != "Bearer "+testAPIKey {
		t.Errorf("Authorization = %v", got)
	}
}

func TestSearch_RemoteErrorIsPrintedVerbatim(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	newFakeAPI(t, http.StatusUnauthorized, `{"success":false,"error":{"code":"INVALID_API_KEY","message":"bad key <x>"}}`)

	out, _, err := runCLI(t, "", "search", "react")
	if err != nil {
		t.Fatalf("search should report the envelope, not fail: %v", err)
	}
	if !strings.Contains(out, `"code": "INVALID_API_KEY"`) || !strings.Contains(out, `"message": "bad key <x>"`) {
		t.Errorf("remote error not passed through:\n%s", out)
	}
}

func TestSearch_ConnectionErrorPrintsFetchError(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	t.Setenv(config.BaseURLEnv, "http://"+addr)

	out, _, err := runCLI(t, "", "search", "react")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, `"code": "FETCH_ERROR"`) {
		t.Errorf("expected FETCH_ERROR envelope:\n%s", out)
	}
}

func TestAISearch_JoinsArguments(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"data":{"skills":[]}}`)

	out, _, err := runCLI(t, "", "ai-search", "write", "better", "tests")
	if err != nil {
		t.Fatalf("ai-search: %v", err)
	}
	if !strings.Contains(out, `Running AI semantic search: "write better tests"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := api.path.Load(); got != "/api/v1/skills/ai-search" {
		t.Errorf("path = %v", got)
	}
	q := api.lastQuery()
	if len(q) != 1 || q.Get("q") != "write better tests" {
		t.Errorf("unexpected query: %v", q)
	}
}

func TestAISearch_NoArgs(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	api := newFakeAPI(t, http.StatusOK, oneSkillBody)

	_, _, err := runCLI(t, "", "ai-search")
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode(err))
	}
	if api.hits.Load() != 0 {
		t.Error("expected no API calls")
	}
}

func TestInstallHelper_PrintsReport(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	api := newFakeAPI(t, http.StatusOK, oneSkillBody)

	out, _, err := runCLI(t, "", "install-helper", "x")
	if err != nil {
		t.Fatalf("install-helper: %v", err)
	}
	for _, want := range []string{
		"=== Search Results ===",
		"[1] s1",
		"⭐ Stars: 10",
		"Install: npx add-skill x/y --list",
		"=== Quick Install Commands ===",
		"npx add-skill x/y -g -y",
		`npx add-skill x/y --skill "s1" -g -y`,
		"Found 1 matching skills in total",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	q := api.lastQuery()
	if q.Get("page") != "1" || q.Get("limit") != "5" || q.Get("sortBy") != "stars" {
		t.Errorf("unexpected query: %v", q)
	}
}

func TestInstallHelper_AgentFromConfig(t *testing.T) {
	home := useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	newFakeAPI(t, http.StatusOK, oneSkillBody)

	if err := config.Save(filepath.Join(home, "config.yaml"), &config.Config{Install: config.InstallConfig{Agent: "antigravity"}}); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "", "install-helper", "x", "3")
	if err != nil {
		t.Fatalf("install-helper: %v", err)
	}
	if !strings.Contains(out, "npx add-skill x/y -g -a antigravity -y") {
		t.Errorf("agent flag missing:\n%s", out)
	}
	if !strings.Contains(out, "(top 3, sorted by stars)") {
		t.Errorf("limit not reported:\n%s", out)
	}
}

func TestInstallHelper_FailureExitsOne(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	newFakeAPI(t, http.StatusTooManyRequests, `{"success":false,"error":{"code":"RATE_LIMITED","message":"slow down"}}`)

	_, _, err := runCLI(t, "", "install-helper", "x")
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode(err))
	}
	if err.Error() != "Search failed: slow down" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestInstallHelper_FailureWithoutMessage(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	newFakeAPI(t, http.StatusInternalServerError, `{"success":false}`)

	_, _, err := runCLI(t, "", "install-helper", "x")
	if err == nil || err.Error() != "Search failed: unknown error" {
		t.Errorf("error = %v", err)
	}
}

func TestInstallHelper_EmptyResult(t *testing.T) {
	useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	newFakeAPI(t, http.StatusOK, `{"success":true,"data":{"skills":[],"pagination":{"total":0}}}`)

	out, _, err := runCLI(t, "", "install-helper", "nothing-matches")
	if err != nil {
		t.Fatalf("empty result should exit 0: %v", err)
	}
	if !strings.Contains(out, "No matching skills found") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "=== Search Results ===") {
		t.Errorf("no report expected:\n%s", out)
	}
}

func TestSetup_WritesKeyUsedBySearch(t *testing.T) {
	home := useTempHome(t)

	out, _, err := runCLI(t, "", "setup", testAPIKey)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !strings.Contains(out, "API key saved") {
		t.Errorf("unexpected output:\n%s", out)
	}
	data, err := os.ReadFile(filepath.Join(home, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# SkillsMP API settings\nSKILLSMP_API_KEY="+testAPIKey+"\n" {
		t.Errorf("unexpected file content: %q", data)
	}

	api := newFakeAPI(t, http.StatusOK, oneSkillBody)
	if _, _, err := runCLI(t, "", "search", "react"); err != nil {
		t.Fatalf("search after setup: %v", err)
	}
	if got := api.auth.Load(); got != "Bearer "+testAPIKey {
		t.Errorf("Authorization = %v", got)
	}
}

func TestSetup_AgentFeedsInstallHelper(t *testing.T) {
	useTempHome(t)

	if _, _, err := runCLI(t, "", "setup", testAPIKey, "--agent", "cursor"); err != nil {
		t.Fatalf("setup --agent: %v", err)
	}

	newFakeAPI(t, http.StatusOK, oneSkillBody)
	out, _, err := runCLI(t, "", "install-helper", "x")
	if err != nil {
		t.Fatalf("install-helper: %v", err)
	}
	if !strings.Contains(out, `npx add-skill x/y --skill "s1" -g -a cursor -y`) {
		t.Errorf("agent from config.yaml not applied:\n%s", out)
	}
}

func TestSetup_InvalidKey(t *testing.T) {
	home := useTempHome(t)

	_, _, err := runCLI(t, "", "setup", "not-a-key")
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode(err))
	}
	if !strings.Contains(err.Error(), "sk_live_skillsmp_...") || !strings.Contains(err.Error(), "not-a-key") {
		t.Errorf("error should show expected format and input, got %q", err.Error())
	}
	if _, statErr := os.Stat(filepath.Join(home, ".env")); !os.IsNotExist(statErr) {
		t.Error("no credential file should be written")
	}
}

func TestSetup_MissingKeyShowsHelp(t *testing.T) {
	useTempHome(t)

	_, _, err := runCLI(t, "", "setup")
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode(err))
	}
	if !strings.Contains(err.Error(), "https://skillsmp.com/settings/api") {
		t.Errorf("help text missing from %q", err.Error())
	}
}

func TestSetup_PromptReadsStdin(t *testing.T) {
	home := useTempHome(t)

	if _, _, err := runCLI(t, "  "+testAPIKey+"\n", "setup", "--prompt"); err != nil {
		t.Fatalf("setup --prompt: %v", err)
	}
	vals, err := config.ReadDotEnv(filepath.Join(home, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if vals[config.APIKeyEnv] != testAPIKey {
		t.Errorf("stored key = %q", vals[config.APIKeyEnv])
	}
}

func TestDoctor(t *testing.T) {
	useTempHome(t)

	out, _, err := runCLI(t, "", "doctor")
	if err == nil {
		t.Fatal("doctor should fail without an API key")
	}
	if !strings.Contains(out, "[ API key ]") {
		t.Errorf("unexpected output:\n%s", out)
	}

	t.Setenv(config.APIKeyEnv, testAPIKey)
	out, _, err = runCLI(t, "", "doctor")
	if err != nil {
		t.Fatalf("doctor with key: %v\n%s", err, out)
	}
	if !strings.Contains(out, "****") || strings.Contains(out, testAPIKey) {
		t.Errorf("key should be masked:\n%s", out)
	}
	if !strings.Contains(out, "All checks passed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDoctor_InvalidConfig(t *testing.T) {
	home := useTempHome(t)
	t.Setenv(config.APIKeyEnv, testAPIKey)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("timeout: [oops\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, "", "doctor")
	if err == nil {
		t.Fatal("doctor should fail on invalid config.yaml")
	}
	if !strings.Contains(stderr, "✗") {
		t.Errorf("expected a failure line on stderr, got %q", stderr)
	}
}

func TestVersion(t *testing.T) {
	useTempHome(t)

	out, _, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Version:    dev") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey("sk_live_skillsmp_abcdefgh"); got != "sk_live_skillsmp_****efgh" {
		t.Errorf("maskKey = %q", got)
	}
	if got := maskKey("sk_live_skillsmp_ab"); got != "sk_live_skillsmp_****" {
		t.Errorf("maskKey short = %q", got)
	}
}
