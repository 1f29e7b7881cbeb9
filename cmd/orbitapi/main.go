package main

import "github.com/ramdasbb/villageorbit/cmd/orbitapi/cmd"

func main() {
	cmd.Execute()
}
