// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceNumber_OneAfter(t *testing.T) {
	s := SequenceNumber(5)
	assert.Equal(t, SequenceNumber(6), s.OneAfter())
}

func TestSequenceNumber_IncrementTo(t *testing.T) {
	s := SequenceNumber(3)
	s.IncrementTo(10)
	assert.Equal(t, SequenceNumber(10), s)
}

func TestSequenceNumber_IncrementTo_PanicsOnNonIncrease(t *testing.T) {
	s := SequenceNumber(10)
	assert.Panics(t, func() { s.IncrementTo(10) })

	s2 := SequenceNumber(10)
	assert.Panics(t, func() { s2.IncrementTo(5) })
}
