package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MrEthical07/dojoauth/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "dojoauth:", err)
		os.Exit(1)
	}
}
