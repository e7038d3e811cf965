package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	app := &cli.App{
		Name:  "suictl",
		Usage: "query a Sui fullnode",
		Flags: []cli.Flag{
			FlagNetwork,
			FlagRPC,
			FlagJSON,
			FlagDebug,
		},
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "chain-id",
				Usage:  "print the chain identifier",
				Action: chainID,
			},
			{
				Name:      "checkpoint",
				Usage:     "print a checkpoint, the latest when seq is omitted",
				ArgsUsage: "[seq]",
				Action:    checkpoint,
			},
			{
				Name:   "gas-price",
				Usage:  "print the reference gas price in MIST",
				Action: gasPrice,
			},
			{
				Name:  "events",
				Usage: "list events by type or by emitting module",
				Flags: []cli.Flag{
					FlagEventType,
					FlagPackage,
					FlagModule,
					FlagLimit,
					FlagDescending,
				},
				Action: events,
			},
			{
				Name:  "address",
				Usage: "derive a secp256k1 address from an xpub",
				Flags: []cli.Flag{
					FlagXPub,
					FlagIndex,
				},
				Action: address,
			},
		},
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	return app
}

func main() {
	if err := RootApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
