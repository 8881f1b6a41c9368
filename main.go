// The main package for the dice-crawler executable.
package main

import "github.com/jobsift/dice-crawler/cmd"

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
