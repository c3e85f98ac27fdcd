package main

import "github.com/relloyd/sparkpipe/cmd"

func main() {
	cmd.Execute()
}
