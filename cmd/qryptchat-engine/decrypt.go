package main

import (
	"context"
	"fmt"
)

func decryptCommand(args []string) {
	fs, vaultDir, logLevel := newEngineFlagSet("decrypt")
	envelope := fs.String("envelope", "", "envelope JSON string")
	senderPK := fs.String("sender-public-key", "", "informational sender public key (not authenticated)")
	if err := fs.Parse(args); err != nil {
		fatalf("decrypt: %v", err)
	}
	if *envelope == "" {
		fatalf("decrypt: --envelope is required")
	}

	e, err := openEngine(*vaultDir, *logLevel)
	if err != nil {
		fatalf("decrypt: %v", err)
	}

	fmt.Println(e.DecryptForCurrentUser(context.Background(), *envelope, *senderPK))
}
