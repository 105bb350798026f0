package main

import "github.com/oy3o/objcodec/cmd/objcodec-demo/cmd"

func main() {
	cmd.Execute()
}
