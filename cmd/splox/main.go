package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "--help", "-h", "help":
		showUsage()
		return
	case "run":
		err = withApp(args, runRun)
	case "listen":
		err = withApp(args, runListen)
	case "tree":
		err = withApp(args, runTree)
	case "balance":
		err = withApp(args, runBalance)
	case "encrypt":
		err = runEncrypt(args, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'splox --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`splox - Splox workflow platform client

USAGE:
    splox <COMMAND> [FLAGS]

COMMANDS:
    run         Trigger a workflow run and wait for it to finish
    listen      Print the live events of a run or chat
                Subcommands: run <id>, chat <id>
    tree        Print execution trees of one or more runs
    balance     Print the account balance
    encrypt     Encrypt a value for the config file (needs SPLOX_CONFIG_KEY)

RUN FLAGS:
    --version ID       Workflow version ID (required)
    --chat ID          Chat ID (required)
    --start ID         Start node ID (required)
    --query TEXT       Query passed to the start node
    --timeout DUR      Run-and-wait deadline (default from config, 5m)
    --stream           Print each event while waiting

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./splox.yaml)

CONFIGURATION:
    Config file: ./splox.yaml
    Environment: SPLOX_* variables override config

EXAMPLES:
    splox run --version v1 --chat c1 --start n1 --query "hello" --stream
    splox listen run 3f2a...
    splox tree r1 r2 r3
    SPLOX_CONFIG_KEY=pass splox encrypt sk-live-...`)
}

// configPath finds --config in args, then SPLOX_CONFIG, then ./splox.yaml.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("SPLOX_CONFIG"); p != "" {
		return p
	}
	return "splox.yaml"
}

// stripConfigFlag removes --config and its value so subcommands see only
// their own arguments.
func stripConfigFlag(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			i++
		case strings.HasPrefix(args[i], "--config="):
		default:
			out = append(out, args[i])
		}
	}
	return out
}
