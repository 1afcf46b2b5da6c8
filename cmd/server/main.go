package main

import "github.com/ratiba-events/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
