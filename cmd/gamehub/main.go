package main

import (
	"github.com/example/gamehub/internal/cli"
)

func main() {
	cli.Execute()
}
