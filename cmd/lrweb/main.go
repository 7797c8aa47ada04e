// Package main provides the CLI entrypoint for lrweb.
package main

func main() {
	Execute()
}
