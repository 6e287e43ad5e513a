// Package main provides the entry point for the orinup CLI.
package main

import "os"

func main() {
	os.Exit(Execute())
}
