package main

import "github.com/fonsecaaso/linkvault/go-server/cmd"

func main() {
	cmd.Execute()
}
