package main

import "arifmusic/cmd"

func main() {
	cmd.Execute()
}
