package main

import "gitdelayed/cmd"

func main() {
	cmd.Run()
}
