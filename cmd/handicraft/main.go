package main

import (
	"github.com/andrescamacho/handicraft-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
