package main

import (
	"encoding/json"
	"fmt"
)

func exportCommand(args []string) {
	fs, vaultDir, logLevel := newEngineFlagSet("export")
	if err := fs.Parse(args); err != nil {
		fatalf("export: %v", err)
	}

	e, err := openEngine(*vaultDir, *logLevel)
	if err != nil {
		fatalf("export: %v", err)
	}

	exported, err := e.ExportAll()
	if err != nil {
		fatalf("export: %v", err)
	}

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		fatalf("export: %v", err)
	}
	fmt.Println(string(data))
}
