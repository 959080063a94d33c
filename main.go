package main

import "github.com/aure/amberctl/cmd"

func main() {
	cmd.Execute()
}
