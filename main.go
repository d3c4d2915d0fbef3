package main

import "jobpilot/cmd"

func main() {
	cmd.Execute()
}
