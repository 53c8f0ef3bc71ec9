package main

import "matrixtask/cmd"

func main() {
	cmd.Execute()
}
