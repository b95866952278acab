package main

import "github.com/felixgeelhaar/please/cmd/please/cli"

func main() {
	cli.Execute()
}
