package main

import "loopmix/internal/cli"

func main() {
	cli.Execute()
}
