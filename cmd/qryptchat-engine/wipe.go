package main

import (
	"context"
	"fmt"
)

func wipeCommand(args []string) {
	fs, vaultDir, logLevel := newEngineFlagSet("wipe")
	confirm := fs.Bool("yes", false, "confirm the destructive wipe")
	if err := fs.Parse(args); err != nil {
		fatalf("wipe: %v", err)
	}
	if !*confirm {
		fatalf("wipe: refusing to erase durable key state without --yes")
	}

	e, err := openEngine(*vaultDir, *logLevel)
	if err != nil {
		fatalf("wipe: %v", err)
	}
	if err := e.Wipe(context.Background()); err != nil {
		fatalf("wipe: %v", err)
	}
	fmt.Println("vault wiped")
}
