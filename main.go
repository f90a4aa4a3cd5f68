package main

import "github.com/KaramelBytes/reliefdash/cmd"

func main() {
	cmd.Execute()
}
