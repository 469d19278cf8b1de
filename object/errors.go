// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package object

import "github.com/pkg/errors"

var (
	// ErrCoinOverflow is returned by Coin.Add when the sum would not fit in
	// a u64 balance.
	ErrCoinOverflow = errors.New("coin balance overflow")
	// ErrCoinUnderflow is returned by Coin.Sub when delta exceeds the
	// current balance.
	ErrCoinUnderflow = errors.New("coin balance underflow")
)
