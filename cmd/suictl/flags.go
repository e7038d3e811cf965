package main

import "github.com/urfave/cli/v2"

var (
	FlagNetwork = &cli.StringFlag{
		Name:    "network",
		Usage:   "Sui network (mainnet, testnet, devnet, localnet)",
		Value:   "testnet",
		EnvVars: []string{"SUI_NETWORK"},
	}

	FlagRPC = &cli.StringFlag{
		Name:    "rpc",
		Usage:   "Fullnode JSON-RPC url, overrides --network",
		EnvVars: []string{"SUI_RPC_URL"},
	}

	FlagJSON = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print results as JSON",
	}

	FlagDebug = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Log RPC retries",
	}

	FlagEventType = &cli.StringFlag{
		Name:  "type",
		Usage: "Move event type, e.g. 0x2::coin::CoinMetadata",
	}

	FlagPackage = &cli.StringFlag{
		Name:    "package",
		Usage:   "Package id, used with --module when --type is not set",
		EnvVars: []string{"MEMEZ_PACKAGE_ID"},
	}

	FlagModule = &cli.StringFlag{
		Name:  "module",
		Usage: "Module that emitted the events",
		Value: "events",
	}

	FlagLimit = &cli.IntFlag{
		Name:  "limit",
		Usage: "Page size",
		Value: 20,
	}

	FlagDescending = &cli.BoolFlag{
		Name:  "desc",
		Usage: "Newest events first",
		Value: true,
	}

	FlagXPub = &cli.StringFlag{
		Name:     "xpub",
		Usage:    "Extended public key at m/54'/784'/0'/0",
		EnvVars:  []string{"SUI_XPUB"},
		Required: true,
	}

	FlagIndex = &cli.UintFlag{
		Name:  "index",
		Usage: "Non-hardened child index",
	}
)
