package main

import "github.com/vietddude/prober/internal/cli"

func main() {
	cli.Execute()
}
