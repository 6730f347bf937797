package main

import (
	"fmt"

	"github.com/qryptchat/pq-engine/pkg/kem"
)

func keygenCommand(args []string) {
	fs, vaultDir, logLevel := newEngineFlagSet("keygen")
	if err := fs.Parse(args); err != nil {
		fatalf("keygen: %v", err)
	}

	e, err := openEngine(*vaultDir, *logLevel)
	if err != nil {
		fatalf("keygen: %v", err)
	}

	for _, alg := range []kem.Algorithm{kem.Primary, kem.Legacy} {
		pk, err := e.PublicKey(alg)
		if err != nil {
			fatalf("keygen: %v", err)
		}
		fmt.Printf("%s (%s): %s\n", alg, alg.Name(), pk)
	}
}
