package main

import "github.com/example/slotbook/cmd"

func main() {
	cmd.Execute()
}
