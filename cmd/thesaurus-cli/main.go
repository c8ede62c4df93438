package main

import "thesaurus/cmd/thesaurus-cli/cmd"

func main() {
	cmd.Execute()
}
