package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
	"go.k6.io/k6/js/modules"
)

var errInvalidPrivateKey = errors.New("invalid private key: expected non-empty hex string with even length")

const defaultAccountCount = 10

// ethereumAccountPath is m/44'/60'/0'/0 without the final address index.
//
//nolint:gochecknoglobals // Constant derivation prefix.
var ethereumAccountPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
}

// Wallet provides account helpers for k6 scripts picking a signer.
type Wallet struct{}

// Key is an Ethereum account: hex private key without 0x and checksummed address.
type Key struct {
	PrivateKey string `js:"privateKey"`
	Address    string `js:"address"`
}

func init() { //nolint:gochecknoinits // Required for k6 module registration.
	modules.Register("k6/x/ethereum/wallet", &Wallet{})
}

func keyFromECDSA(privateKey *ecdsa.PrivateKey) *Key {
	return &Key{
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(privateKey)),
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
	}
}

func parsePrivateKey(input string) (*ecdsa.PrivateKey, error) {
	cleaned := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(input)), "0x")
	if cleaned == "" || len(cleaned)%2 != 0 {
		return nil, errInvalidPrivateKey
	}

	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	privateKey, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create private key: %w", err)
	}

	return privateKey, nil
}

// GenerateKey creates a random account.
func (w *Wallet) GenerateKey() (*Key, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	return keyFromECDSA(privateKey), nil
}

// AccountFromPrivateKey derives the account of a hex private key, with or without 0x.
func (w *Wallet) AccountFromPrivateKey(privateKeyHex string) (*Key, error) {
	privateKey, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	return keyFromECDSA(privateKey), nil
}

// AccountsFromMnemonic derives count accounts (default 10) from a BIP-39
// mnemonic along m/44'/60'/0'/0/i.
func (w *Wallet) AccountsFromMnemonic(mnemonic string, count int) ([]Key, error) {
	if count <= 0 {
		count = defaultAccountCount
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create seed from mnemonic: %w", err)
	}

	parent, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	for _, index := range ethereumAccountPath {
		parent, err = parent.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive account path: %w", err)
		}
	}

	keys := make([]Key, 0, count)

	for index := range count {
		child, err := parent.Derive(uint32(index)) //nolint:gosec // Bounded by count.
		if err != nil {
			return nil, fmt.Errorf("failed to derive key at index %d: %w", index, err)
		}

		privateKey, err := child.ECPrivKey()
		if err != nil {
			return nil, fmt.Errorf("failed to get private key at index %d: %w", index, err)
		}

		keys = append(keys, *keyFromECDSA(privateKey.ToECDSA()))
	}

	return keys, nil
}
