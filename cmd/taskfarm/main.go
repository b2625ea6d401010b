package main

import "github.com/Andrej220/go-utils/taskfarm/cmd/taskfarm/commands"

func main() {
	commands.Execute()
}
