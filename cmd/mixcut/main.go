package main

import "github.com/forPelevin/mixcut/internal/cli"

func main() {
	cli.Main()
}
