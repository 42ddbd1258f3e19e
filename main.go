package main

import "github.com/josephlewis42/sesh/cmd"

func main() {
	cmd.Execute()
}
