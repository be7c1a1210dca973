package main

import "github.com/frahmantamala/worktrack/cmd"

func main() {
	cmd.Execute()
}
