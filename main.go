package main

import "github.com/akopylova/kabinet/cmd"

func main() {
	cmd.Execute()
}
