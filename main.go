package main

import "github.com/pitchlab/tactics.report/cmd"

func main() {
	cmd.Execute()
}
