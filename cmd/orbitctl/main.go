package main

import "github.com/ramdasbb/villageorbit/cmd/orbitctl/cmd"

func main() {
	cmd.Execute()
}
