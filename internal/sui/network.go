package sui

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet  Network = "testnet"
	Devnet   Network = "devnet"
	Localnet Network = "localnet"
)

var ErrUnknownNetwork = errors.New("unknown sui network")

var fullnodeURLs = map[Network]string{
	Mainnet:  "https://fullnode.mainnet.sui.io:443",
	Testnet:  "https://fullnode.testnet.sui.io:443",
	Devnet:   "https://fullnode.devnet.sui.io:443",
	Localnet: "http://127.0.0.1:9000",
}

// GetFullnodeURL returns the public full node endpoint for n, or "" if n is
// not a known network.
func GetFullnodeURL(n Network) string {
	return fullnodeURLs[n]
}

func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fullnodeURLs[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
	}
	return n, nil
}

func DefaultWSEndpoint(rpc string) string {
	rpc = strings.TrimRight(rpc, "/")
	switch {
	case strings.HasPrefix(rpc, "ws://"), strings.HasPrefix(rpc, "wss://"):
		return rpc
	case strings.HasPrefix(rpc, "https://"):
		return "wss://" + strings.TrimPrefix(rpc, "https://")
	case strings.HasPrefix(rpc, "http://"):
		out := "ws://" + strings.TrimPrefix(rpc, "http://")
		// localnet serves subscriptions one port above the RPC port.
		if u, err := url.Parse(out); err == nil && u.Port() == "9000" {
			u.Host = net.JoinHostPort(u.Hostname(), "9001")
			return u.String()
		}
		return out
	}
	return ""
}
