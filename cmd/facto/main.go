package main

import "github.com/facto-ocr/facto/cmd/facto/cmd"

func main() {
	cmd.Execute()
}
