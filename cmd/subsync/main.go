package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Interrupt-driven cancellation is not worth reporting.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "subsync: %v\n", err)
		}
		os.Exit(1)
	}
}
