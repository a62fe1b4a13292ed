package main

import "github.com/itsmng/oktasync/internal/cli"

func main() {
	cli.Execute()
}
