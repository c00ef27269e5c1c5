package main

import "tikrip/cmd"

func main() {
	cmd.Execute()
}
