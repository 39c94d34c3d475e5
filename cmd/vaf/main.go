package main

import "github.com/useVaf/vaf-cli/internal/cli"

func main() {
	cli.Execute()
}
