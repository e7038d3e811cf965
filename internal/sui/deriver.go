package sui

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"golang.org/x/crypto/blake2b"
)

const (
	addressLength = 32
	// secp256k1FlagByte is the signature scheme flag hashed in front of a
	// secp256k1 public key.
	secp256k1FlagByte = 0x01
)

type AddressDeriver struct {
	XPub string
}

// Derive expects XPub at path m/54'/784'/0'/0 and derives the secp256k1
// address of non-hardened child index.
func (d AddressDeriver) Derive(index uint32) (string, error) {
	if d.XPub == "" {
		return "", errors.New("xpub is not configured")
	}
	if index >= hdkeychain.HardenedKeyStart {
		return "", fmt.Errorf("index %d is hardened", index)
	}

	key, err := hdkeychain.NewKeyFromString(d.XPub)
	if err != nil {
		return "", err
	}
	child, err := key.Derive(index)
	if err != nil {
		return "", err
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return "", err
	}
	return Secp256k1Address(pubKey.SerializeCompressed()), nil
}

func Secp256k1Address(compressed []byte) string {
	buf := make([]byte, 0, 1+len(compressed))
	buf = append(buf, secp256k1FlagByte)
	buf = append(buf, compressed...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

func NormalizeAddress(s string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(s))
	addr = strings.TrimPrefix(addr, "0x")
	if addr == "" || len(addr) > addressLength*2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if _, err := hex.DecodeString(padHex(addr)); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return "0x" + strings.Repeat("0", addressLength*2-len(addr)) + addr, nil
}

func padHex(s string) string {
	if len(s)%2 == 1 {
		return "0" + s
	}
	return s
}
