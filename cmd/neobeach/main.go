package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	c, err := newCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := c.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	env := &runEnv{Ctx: context.Background(), Stdout: os.Stdout, Stderr: os.Stderr}
	if err := c.Execute(env); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
