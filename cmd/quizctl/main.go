package main

import "github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/cli"

func main() {
	cli.Execute()
}
