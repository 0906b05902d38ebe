package main

import "docvault/cmd"

func main() {
	cmd.Execute()
}
