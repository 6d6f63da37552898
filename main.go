package main

import "github.com/synapticforge/crawlmesh/cmd"

func main() {
	cmd.Execute()
}
