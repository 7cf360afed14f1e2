package main

import "github.com/Hubro/nso-log-reader/internal/cmd"

func main() {
	cmd.Execute()
}
