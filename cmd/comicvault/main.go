package main

import "comicvault/cmd/comicvault/command"

func main() {
	command.Execute()
}
