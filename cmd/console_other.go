//go:build !windows

package cmd

func setupConsole() {}
