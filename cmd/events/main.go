package main

import "github.com/MiruVL/events/internal/cli"

func main() {
	cli.Execute()
}
