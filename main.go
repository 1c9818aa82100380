package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hitoshi/ridebook/internal/app"
)

func main() {
	if err := app.Run(context.Background(), app.DefaultEnv(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ridebook: %v\n", err)
		os.Exit(1)
	}
}
