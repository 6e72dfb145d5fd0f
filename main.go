package main

import "github.com/killallgit/stagewise/cmd"

func main() {
	cmd.Execute()
}
