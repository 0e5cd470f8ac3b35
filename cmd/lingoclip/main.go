package main

import "github.com/lingotools/lingoclip/internal/cli"

func main() {
	cli.Main()
}
