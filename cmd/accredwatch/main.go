package main

import "github.com/caresignal/accredwatch/internal/cli"

func main() {
	cli.Execute()
}
