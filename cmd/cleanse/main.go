package main

import (
	"fmt"
	"os"

	"github.com/Dicklesworthstone/cleanse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cleanse:", err)
		os.Exit(1)
	}
}
