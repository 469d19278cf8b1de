// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package object

import (
	"math/bits"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
)

// GasCoinTypePrefix identifies Move objects whose type is a coin, in the
// style of Sui's "0x2::coin::Coin<...>" type tag. Any object whose type
// carries this prefix is treated as a coin view for balance arithmetic.
const GasCoinTypePrefix = "0x2::coin::Coin<"

// Coin is a typed reinterpretation of a MoveObject whose type is a coin
// type: it exposes the balance as a first-class uint64 rather than an
// opaque byte blob (spec.md §2.3).
type Coin struct {
	Balance uint64
}

// coinContents is the RLP-encoded wire shape of a Coin's Move contents.
type coinContents struct {
	Balance uint64
}

// IsCoinType reports whether a Move type tag denotes a coin.
func IsCoinType(typeTag string) bool {
	return strings.HasPrefix(typeTag, GasCoinTypePrefix)
}

// TryExtractCoin decodes obj's contents as a Coin if its type says it is
// one. ok is false (with no error) for non-coin Move objects.
func TryExtractCoin(obj *MoveObject) (coin *Coin, ok bool, err error) {
	if obj == nil || !IsCoinType(obj.TypeTag) {
		return nil, false, nil
	}
	c, err := CoinFromBytes(obj.Contents)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// CoinFromBytes decodes RLP-encoded coin contents, mirroring the original's
// Coin::from_bcs_bytes (temporary_store.rs, smash_gas).
func CoinFromBytes(data []byte) (*Coin, error) {
	var wire coinContents
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return nil, err
	}
	return &Coin{Balance: wire.Balance}, nil
}

// ToBytes RLP-encodes the coin's contents for re-insertion into a
// MoveObject, mirroring bcs::to_bytes(&gas_coin) in smash_gas.
func (c *Coin) ToBytes() ([]byte, error) {
	return rlp.EncodeToBytes(coinContents{Balance: c.Balance})
}

// Add adds delta to the coin's balance, failing on overflow (spec.md §4.3
// failure modes).
func (c *Coin) Add(delta uint64) error {
	sum, carry := bits.Add64(c.Balance, delta, 0)
	if carry != 0 {
		return ErrCoinOverflow
	}
	c.Balance = sum
	return nil
}

// Sub subtracts delta from the coin's balance, failing on underflow.
func (c *Coin) Sub(delta uint64) error {
	if delta > c.Balance {
		return ErrCoinUnderflow
	}
	c.Balance -= delta
	return nil
}
