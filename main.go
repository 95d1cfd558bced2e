package main

import "persondir/cmd"

func main() {
	cmd.Execute()
}
