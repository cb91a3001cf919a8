package main

import "go-resume-insight/cmd"

func main() {
	cmd.Execute()
}
