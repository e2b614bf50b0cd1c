package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags at release time.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Show skillsmp version and build information",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSettingsAnnotation: "true"},
	RunE:        runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	p := newPrinter(cmd)
	p.printf("Version:    %s\n", version)
	p.printf("Commit:     %s\n", emptyAsNA(commit))
	p.printf("Build Date: %s\n", emptyAsNA(buildDate))
	p.printf("Go Version: %s\n", runtime.Version())
	p.printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
