package main

import "github.com/iksnae/chatsession/cmd"

func main() {
	cmd.Execute()
}
