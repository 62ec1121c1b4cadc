package main

import "github.com/aleph-zero/flutterstack/cmd"

func main() {
	cmd.Execute()
}
