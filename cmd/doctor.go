package cmd

import (
	"fmt"
	"net/url"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kamusis/skillsmp-cli/internal/config"
	"github.com/kamusis/skillsmp-cli/internal/credential"
	"github.com/kamusis/skillsmp-cli/internal/logging"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that skillsmp's configuration and API key are in place.
Run this command when something seems wrong, or before filing a bug report.
No request is sent to the API.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSettingsAnnotation: "true"},
	RunE:        runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	p := newPrinter(cmd)
	allOK := true
	failD := func(format string, args ...any) {
		p.fail("", fmt.Sprintf(format, args...))
		allOK = false
	}

	p.section("skillsmp doctor")
	p.printf("\n")

	// ── Check 1: home directory ───────────────────────────────────────────────
	p.group("Home directory")
	home, err := config.Dir()
	if err != nil {
		failD("cannot determine home directory: %v", err)
	} else if info, statErr := os.Stat(home); statErr != nil {
		p.miss("", fmt.Sprintf("%s does not exist yet (created by 'skillsmp setup')", home))
	} else if !info.IsDir() {
		failD("%s exists but is not a directory", home)
	} else {
		p.ok("", home)
	}
	p.printf("\n")

	// ── Check 2: config.yaml ──────────────────────────────────────────────────
	p.group("config.yaml")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.Path()
	}
	if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
		p.miss("", fmt.Sprintf("%s not found, using defaults", cfgPath))
	} else if _, loadErr := config.Load(cfgPath); loadErr != nil {
		failD("%v", loadErr)
	} else {
		p.ok("", fmt.Sprintf("valid YAML: %s", cfgPath))
	}

	s, settingsErr := config.LoadSettings(flagConfig)
	if settingsErr != nil {
		failD("%v", settingsErr)
	}
	p.printf("\n")

	// ── Check 3: credential file ──────────────────────────────────────────────
	p.group("Credential file")
	if settingsErr != nil {
		p.skip("", "skipped (settings not loaded)")
	} else {
		checkCredentialFile(p, s.DotEnvPath, failD)
	}
	p.printf("\n")

	// ── Check 4: API key ──────────────────────────────────────────────────────
	p.group("API key")
	if settingsErr != nil {
		p.skip("", "skipped (settings not loaded)")
	} else {
		checkAPIKey(p, s, failD)
	}
	p.printf("\n")

	// ── Check 5: API endpoint ─────────────────────────────────────────────────
	p.group("API endpoint")
	if settingsErr != nil {
		p.skip("", "skipped (settings not loaded)")
	} else if u, err := url.Parse(s.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		failD("invalid base URL %q (set %s or base_url in config.yaml)", s.BaseURL, config.BaseURLEnv)
	} else {
		p.ok("", s.BaseURL)
		if s.Timeout > 0 {
			p.info("", fmt.Sprintf("request timeout %s", s.Timeout))
		} else {
			p.info("", "no request timeout")
		}
	}
	p.printf("\n")

	// ── Check 6: log file ─────────────────────────────────────────────────────
	p.group("Log file")
	if settingsErr != nil {
		p.skip("", "skipped (settings not loaded)")
	} else {
		logFile := s.Logging.File
		if logFile == "" {
			logFile = logging.DefaultFile(s.Home)
		}
		p.info("", fmt.Sprintf("%s (level %s)", logFile, logging.ParseLevel(s.Logging.Level)))
	}
	p.printf("\n")

	// ── Summary ───────────────────────────────────────────────────────────────
	p.printf("===================\n")
	if allOK {
		p.printf("✓  All checks passed. skillsmp is ready to use.\n")
		return nil
	}
	return &exitError{code: 1, msg: "✗  One or more checks failed. See details above."}
}

func checkAPIKey(p *printer, s *config.Settings, failD func(string, ...any)) {
	source := s.DotEnvPath
	if os.Getenv(config.APIKeyEnv) != "" {
		source = "$" + config.APIKeyEnv
	}
	switch {
	case s.APIKey == "":
		failD("%s is not set; run 'skillsmp setup <apiKey>'", config.APIKeyEnv)
	case !credential.IsValidFormat(s.APIKey):
		failD("key from %s does not match %s", source, credential.ExpectedFormat)
	default:
		p.ok("", fmt.Sprintf("found in %s (%s)", source, maskKey(s.APIKey)))
	}
}

func checkCredentialFile(p *printer, path string, failD func(string, ...any)) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		p.miss("", fmt.Sprintf("%s not found (run 'skillsmp setup <apiKey>')", path))
		return
	}
	if err != nil {
		failD("cannot stat %s: %v", path, err)
		return
	}
	vals, err := config.LoadDotEnv()
	if err != nil {
		failD("%v", err)
		return
	}
	if vals[config.APIKeyEnv] == "" {
		p.warn("", fmt.Sprintf("%s has no %s entry", path, config.APIKeyEnv))
	} else {
		p.ok("", path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		p.warn("", fmt.Sprintf("readable by other users (mode %04o); run 'chmod 600 %s'", info.Mode().Perm(), path))
	}
}

// maskKey keeps the fixed prefix and the last four characters of a key.
func maskKey(key string) string {
	const prefix = "sk_live_skillsmp_"
	if len(key) <= len(prefix)+4 {
		return prefix + "****"
	}
	return prefix + "****" + key[len(key)-4:]
}
