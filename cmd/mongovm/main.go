package main

import "github.com/oshokin/mongovm/cmd/mongovm/cmd"

func main() {
	cmd.Execute()
}
