package main

import "github.com/ccsbench/ccsbench/cmd"

func main() {
	cmd.Execute()
}
