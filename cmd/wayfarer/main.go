package main

import "wayfarer/internal/cli"

func main() {
	cli.Execute()
}
