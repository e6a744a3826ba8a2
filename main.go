package main

import "github.com/whatsup-github/whatsup/cmd"

func main() {
	cmd.Execute()
}
