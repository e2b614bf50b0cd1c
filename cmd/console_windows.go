//go:build windows

package cmd

import "golang.org/x/sys/windows"

const codePageUTF8 = 65001

// setupConsole switches the console output code page to UTF-8 so star
// icons and non-ASCII skill names render correctly.
func setupConsole() {
	_ = windows.SetConsoleOutputCP(codePageUTF8)
}
