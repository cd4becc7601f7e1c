package main

import "github.com/pfrederiksen/changelog-relay/internal/cli"

func main() {
	cli.Execute()
}
