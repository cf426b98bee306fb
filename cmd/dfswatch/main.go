package main

import (
	"consumer-flex-app/internal/cli"
)

func main() {
	cli.Execute()
}
