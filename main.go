package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tatianab/dice-battle/internal/cli"
)

// Running the module root starts an interactive game, like `dicebattle play`.
func main() {
	root := cli.NewRootCmd()
	root.SetArgs(append([]string{"play"}, os.Args[1:]...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
