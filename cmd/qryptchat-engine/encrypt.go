package main

import (
	"context"
	"fmt"
)

func encryptCommand(args []string) {
	fs, vaultDir, logLevel := newEngineFlagSet("encrypt")
	recipientPK := fs.String("recipient-public-key", "", "base64 recipient public key")
	message := fs.String("message", "", "plaintext message")
	if err := fs.Parse(args); err != nil {
		fatalf("encrypt: %v", err)
	}
	if *recipientPK == "" || *message == "" {
		fatalf("encrypt: --recipient-public-key and --message are required")
	}

	e, err := openEngine(*vaultDir, *logLevel)
	if err != nil {
		fatalf("encrypt: %v", err)
	}

	envelope, err := e.EncryptFor(context.Background(), *recipientPK, *message)
	if err != nil {
		fatalf("encrypt: %v", err)
	}
	fmt.Println(envelope)
}
