package main

import (
	"fmt"
	"os"

	"github.com/ratlabs/ratl/cmd"
)

func main() {
	rootCmd := cmd.RootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
