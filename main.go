package main

import "github.com/dochub/dochub/cmd"

func main() {
	cmd.Execute()
}
