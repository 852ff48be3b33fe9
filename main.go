package main

import "github.com/robalobadob/pairs/cmd"

func main() {
	cmd.Execute()
}
