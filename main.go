package main

import "github.com/andig/vinfast/cmd"

func main() {
	cmd.Execute()
}
