package main

import "github.com/benmooo/ll-xq/internal/cli"

func main() {
	cli.Execute()
}
