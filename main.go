package main

import "github.com/example/lingua/internal/cli"

func main() {
	cli.Execute()
}
