// Command morph renders and live-updates HTML pages from templates and data
// stores.
package main

func main() {
	Execute()
}
