// Package main provides the collab CLI for applicants, organizers and admins.
package main

import "github.com/mscno/collab/cmd/collab/commands"

func main() {
	commands.Execute(Version)
}
