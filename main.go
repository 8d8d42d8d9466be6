package main

import "github.com/GeorgeStatho/Cloud9Hackathon/cmd"

func main() {
	cmd.Execute()
}
