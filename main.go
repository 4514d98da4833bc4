package main

import "duetrack/cmd"

func main() {
	cmd.Execute()
}
