package main

import "bookhub/cmd/cli/command"

func main() {
	command.Execute()
}
