package main

import "github.com/lepinkainen/bookjournal/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
