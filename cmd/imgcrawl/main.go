// Package main provides the entry point for the imgcrawl CLI.
//
// imgcrawl crawls a website from a seed URL up to a fixed link depth and
// records every image reference it finds, with the page it was found on.
//
// Usage:
//
//	imgcrawl crawl <url> <depth>
//	imgcrawl history
//
// See --help for all available options.
package main

// main is the entry point for imgcrawl.
func main() {
	Execute()
}
