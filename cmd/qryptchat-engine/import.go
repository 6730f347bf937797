package main

import (
	"context"
	"fmt"

	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/primitives"
)

func importCommand(args []string) {
	fs, vaultDir, logLevel := newEngineFlagSet("import")
	algFlag := fs.String("alg", "Primary", "algorithm to replace: Primary or Legacy")
	pkB64 := fs.String("public-key", "", "base64 public key")
	skB64 := fs.String("private-key", "", "base64 private key")
	if err := fs.Parse(args); err != nil {
		fatalf("import: %v", err)
	}

	alg, ok := kem.ParseAlgorithm(*algFlag)
	if !ok {
		fatalf("import: unknown algorithm %q", *algFlag)
	}
	if *pkB64 == "" || *skB64 == "" {
		fatalf("import: --public-key and --private-key are required")
	}

	pk, err := primitives.B64Decode(*pkB64)
	if err != nil {
		fatalf("import: decode public key: %v", err)
	}
	sk, err := primitives.B64Decode(*skB64)
	if err != nil {
		fatalf("import: decode private key: %v", err)
	}

	e, err := openEngine(*vaultDir, *logLevel)
	if err != nil {
		fatalf("import: %v", err)
	}
	if err := e.Import(context.Background(), alg, pk, sk); err != nil {
		fatalf("import: %v", err)
	}
	fmt.Printf("imported %s key pair\n", alg)
}
