package main

import "github.com/emrgen/lineage/cmd"

func main() {
	cmd.Execute()
}
