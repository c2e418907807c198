package main

import "crewsync.com/crewsync/cmd"

func main() {
	cmd.Execute()
}
