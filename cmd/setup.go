package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kamusis/skillsmp-cli/internal/config"
	"github.com/kamusis/skillsmp-cli/internal/credential"
)

var (
	setupPrompt bool
	setupAgent  string
)

var setupCmd = &cobra.Command{
	Use:   "setup <apiKey>",
	Short: "Save your SkillsMP API key",
	Long: `Validate an API key and save it to ~/.skillsmp/.env (or $SKILLSMP_HOME/.env).
The file is replaced, not merged.

How to get an API key:
  1. Sign in at https://skillsmp.com
  2. Open https://skillsmp.com/settings/api
  3. Copy the key; it looks like ` + credential.ExpectedFormat,
	Example: `  skillsmp setup sk_live_skillsmp_yourkey
  skillsmp setup --prompt
  skillsmp setup sk_live_skillsmp_yourkey --agent antigravity`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipSettingsAnnotation: "true"},
	RunE:        runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupPrompt, "prompt", false, "read the key from stdin (hidden input on a terminal)")
	setupCmd.Flags().StringVar(&setupAgent, "agent", "", "also save install.agent to config.yaml (used by install-helper)")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	var key string
	switch {
	case len(args) == 1:
		key = args[0]
	case setupPrompt:
		k, err := promptKey(cmd)
		if err != nil {
			return err
		}
		key = k
	default:
		return &exitError{code: 1, msg: "error: an API key is required\n\n" + cmd.UsageString() + "\n" + cmd.Long}
	}

	path, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	if err := (credential.Store{Path: path}).Set(key); err != nil {
		var ve *credential.ValidationError
		if errors.As(err, &ve) {
			return &exitError{code: 1, msg: fmt.Sprintf("  ✗  Invalid API key format\n"+
				"     Expected format: %s\n"+
				"     You entered:     %s", credential.ExpectedFormat, ve.Key)}
		}
		return fmt.Errorf("cannot save API key: %w", err)
	}

	p := newPrinter(cmd)
	p.ok("", "API key saved")
	p.info("", "location: "+path)

	if setupAgent != "" {
		cfgPath, err := saveInstallAgent(setupAgent)
		if err != nil {
			return err
		}
		p.ok("", fmt.Sprintf("install agent set to %q in %s", setupAgent, cfgPath))
	}
	p.printf("\nYou can now run:\n")
	p.printf("  skillsmp search \"keyword\"\n")
	p.printf("  skillsmp ai-search \"what you need\"\n")
	return nil
}

// promptKey reads one key from stdin, without echo when stdin is a terminal.
func promptKey(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr()) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// saveInstallAgent records agent in config.yaml, keeping its other settings.
func saveInstallAgent(agent string) (string, error) {
	cfgPath := flagConfig
	if cfgPath == "" {
		p, err := config.Path()
		if err != nil {
			return "", err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", err
	}
	cfg.Install.Agent = agent
	if err := config.Save(cfgPath, cfg); err != nil {
		return "", err
	}
	return cfgPath, nil
}
