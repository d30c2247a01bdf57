package main

import "github.com/bmritz/grocerymail/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
