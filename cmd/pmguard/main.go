package main

import "github.com/pmguard/pmguard/internal/cli"

func main() {
	cli.Execute()
}
