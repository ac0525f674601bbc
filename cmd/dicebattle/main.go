package main

import "github.com/tatianab/dice-battle/internal/cli"

func main() {
	cli.Execute()
}
