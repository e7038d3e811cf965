package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/interest-protocol/memez-fun/internal/logger"
	"github.com/interest-protocol/memez-fun/internal/sui"
)

var errNoEventFilter = errors.New("either --type or --package is required")

// endpoint resolves --rpc, falling back to the fullnode of --network.
func endpoint(c *cli.Context) (string, error) {
	if rpc := c.String(FlagRPC.Name); rpc != "" {
		return rpc, nil
	}
	n, err := sui.ParseNetwork(c.String(FlagNetwork.Name))
	if err != nil {
		return "", err
	}
	return sui.GetFullnodeURL(n), nil
}

func newClient(c *cli.Context) (*sui.Client, error) {
	ep, err := endpoint(c)
	if err != nil {
		return nil, err
	}
	log := zap.NewNop()
	if c.Bool(FlagDebug.Name) {
		if log, err = logger.New(logger.Config{Debug: true}); err != nil {
			return nil, err
		}
	}
	return sui.NewClient(ep, sui.WithLogger(log))
}

// output writes v as indented JSON when --json is set, otherwise text.
func output(c *cli.Context, v any, text string) error {
	if c.Bool(FlagJSON.Name) {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(c.App.Writer, text)
	return err
}

func chainID(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	id, err := client.ChainIdentifier(c.Context)
	if err != nil {
		return err
	}
	return output(c, map[string]string{"chainId": id}, id)
}

func checkpoint(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	seq := c.Args().First()
	if seq == "" {
		latest, err := client.LatestCheckpointSequenceNumber(c.Context)
		if err != nil {
			return err
		}
		seq = strconv.FormatUint(latest, 10)
	} else if _, err := strconv.ParseUint(seq, 10, 64); err != nil {
		return fmt.Errorf("invalid checkpoint sequence number %q", seq)
	}

	cp, err := client.GetCheckpoint(c.Context, seq)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("checkpoint %d epoch %d digest %s txs %d at %s",
		cp.SequenceNumber, cp.Epoch, cp.Digest, len(cp.Transactions), cp.Timestamp.Format(time.RFC3339))
	return output(c, cp, text)
}

func gasPrice(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	price, err := client.ReferenceGasPrice(c.Context)
	if err != nil {
		return err
	}
	return output(c, map[string]string{"referenceGasPrice": strconv.FormatUint(price, 10)}, strconv.FormatUint(price, 10))
}

func eventFilter(c *cli.Context) (sui.EventFilter, error) {
	if t := c.String(FlagEventType.Name); t != "" {
		return sui.EventFilter{MoveEventType: t}, nil
	}
	pkg := c.String(FlagPackage.Name)
	if pkg == "" {
		return sui.EventFilter{}, errNoEventFilter
	}
	pkg, err := sui.NormalizeAddress(pkg)
	if err != nil {
		return sui.EventFilter{}, err
	}
	return sui.EventFilter{MoveEventModule: &sui.MoveModule{Package: pkg, Module: c.String(FlagModule.Name)}}, nil
}

func events(c *cli.Context) error {
	filter, err := eventFilter(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	page, err := client.QueryEvents(c.Context, filter, nil, c.Int(FlagLimit.Name), c.Bool(FlagDescending.Name))
	if err != nil {
		return err
	}
	if c.Bool(FlagJSON.Name) {
		return output(c, page, "")
	}
	for _, ev := range page.Events {
		if _, err := fmt.Fprintf(c.App.Writer, "%s:%d %s %s\n", ev.ID.TxDigest, ev.ID.EventSeq, ev.Type, ev.Sender); err != nil {
			return err
		}
	}
	return nil
}

func address(c *cli.Context) error {
	index := c.Uint(FlagIndex.Name)
	if index > math.MaxUint32 {
		return fmt.Errorf("index %d out of range", index)
	}
	addr, err := sui.AddressDeriver{XPub: c.String(FlagXPub.Name)}.Derive(uint32(index))
	if err != nil {
		return err
	}
	return output(c, map[string]any{"index": index, "address": addr}, addr)
}
