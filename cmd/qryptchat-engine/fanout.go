package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qryptchat/pq-engine/pkg/fanout"
)

// recipientList collects repeated --recipient id=base64pk flags.
type recipientList map[string]string

func (r recipientList) String() string { return fmt.Sprintf("%d recipients", len(r)) }

func (r recipientList) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("expected id=base64publickey, got %q", value)
	}
	r[parts[0]] = parts[1]
	return nil
}

func fanoutCommand(args []string) {
	fs, vaultDir, logLevel := newEngineFlagSet("fanout")
	message := fs.String("message", "", "plaintext message")
	recipients := recipientList{}
	fs.Var(recipients, "recipient", "id=base64publickey, may be repeated")
	if err := fs.Parse(args); err != nil {
		fatalf("fanout: %v", err)
	}
	if *message == "" || len(recipients) == 0 {
		fatalf("fanout: --message and at least one --recipient are required")
	}

	e, err := openEngine(*vaultDir, *logLevel)
	if err != nil {
		fatalf("fanout: %v", err)
	}

	dir := fanout.NewStaticDirectory()
	for id, pk := range recipients {
		dir.SetUserPublicKey(id, pk)
	}
	ids := make([]string, 0, len(recipients))
	for id := range recipients {
		ids = append(ids, id)
	}

	result, err := e.EncryptForRecipients(context.Background(), dir, *message, ids)
	if err != nil {
		fatalf("fanout: %v", err)
	}

	data, err := json.MarshalIndent(map[string]interface{}{
		"envelopes": result.Envelopes,
		"failures":  result.Failures,
	}, "", "  ")
	if err != nil {
		fatalf("fanout: %v", err)
	}
	fmt.Println(string(data))
}
