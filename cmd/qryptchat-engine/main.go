// Command qryptchat-engine exercises the post-quantum encryption engine
// end to end from a terminal: key lifecycle (keygen/export/import/wipe)
// and message paths (encrypt/decrypt/fanout) without a host application,
// mirroring the way the teacher's cmd/quantum-vpn demo/bench commands
// exercise its tunnel.
package main

import (
	"fmt"
	"os"

	"github.com/qryptchat/pq-engine/pkg/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "keygen":
		keygenCommand(args)
	case "export":
		exportCommand(args)
	case "import":
		importCommand(args)
	case "wipe":
		wipeCommand(args)
	case "encrypt":
		encryptCommand(args)
	case "decrypt":
		decryptCommand(args)
	case "fanout":
		fanoutCommand(args)
	case "version":
		fmt.Println(version.Full())
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`qryptchat-engine - post-quantum end-to-end encryption engine CLI

USAGE:
    qryptchat-engine <command> [options]

COMMANDS:
    keygen    Initialize the key vault (generates Primary and Legacy pairs)
    export    Export both key pairs as base64 JSON
    import    Import a key pair for one algorithm from base64
    wipe      Erase all durable key state
    encrypt   Encrypt a message for a single recipient public key
    decrypt   Decrypt an envelope with the local vault's private keys
    fanout    Encrypt a message for multiple recipients
    version   Print version information
    help      Show this help message

Run 'qryptchat-engine <command> --help' for flags on a specific command.

All commands read/write the key vault at --vault-dir (default $HOME/.qryptchat/keys).`)
}
