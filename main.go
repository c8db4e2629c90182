package main

import "disk-sweep/cmd"

func main() {
	cmd.Execute()
}
