package main

import "github.com/kamusis/skillsmp-cli/cmd"

func main() {
	cmd.Execute()
}
