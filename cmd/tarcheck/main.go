package main

import "github.com/goplus/tarcheck/cmd/tarcheck/internal"

func main() {
	internal.Execute()
}
