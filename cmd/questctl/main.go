package main

import "quest-tracker/cmd/questctl/root"

func main() {
	root.Execute()
}
