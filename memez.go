// Package memez is the Go entry point to the Memez.fun Sui packages.
package memez

import "github.com/interest-protocol/memez-fun/internal/sui"

// Memez holds a Sui client bound to one fullnode for its whole lifetime.
type Memez struct {
	endpoint string
	client   *sui.Client
}

// New binds a Memez to fullNodeURL, or to the public testnet fullnode when
// fullNodeURL is empty. The URL is used as given; errors from building the
// client are returned unchanged.
func New(fullNodeURL string) (*Memez, error) {
	endpoint := fullNodeURL
	if endpoint == "" {
		endpoint = sui.GetFullnodeURL(sui.Testnet)
	}

	client, err := sui.NewClient(endpoint)
	if err != nil {
		return nil, err
	}
	return &Memez{endpoint: endpoint, client: client}, nil
}
