package main

import "github.com/jywlabs/scaffold/cmd"

func main() {
	cmd.Execute()
}
