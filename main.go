package main

import "github.com/ValentinKolb/kvt/cmd"

func main() {
	cmd.Execute()
}
