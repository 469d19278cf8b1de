// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package event

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/object"
)

func TestBalanceChangeEvent_ClonesAmount(t *testing.T) {
	amount := big.NewInt(100)
	e := BalanceChangeEvent(BalanceChangePay, object.NewAddressOwner(common.Address{0x01}), common.ObjectId{0x01}, 1, "coin", amount)

	amount.SetInt64(999) // mutate the caller's copy
	assert.Equal(t, int64(100), e.Amount.Int64(), "event must hold an independent copy of the amount")
}

func TestNewObjectEvent_Fields(t *testing.T) {
	sender := common.Address{0x01}
	pkg := common.ObjectId{0x02}
	owner := object.NewAddressOwner(sender)
	id := common.ObjectId{0x03}

	e := NewObjectEvent(sender, pkg, "mymodule", owner, "0x2::t::T", id, 5)
	assert.Equal(t, KindNewObject, e.Kind)
	assert.Equal(t, sender, e.Sender)
	assert.Equal(t, pkg, e.PackageID)
	assert.Equal(t, "mymodule", e.TransactionModule)
	assert.Equal(t, id, e.ObjectID)
	assert.Equal(t, common.SequenceNumber(5), e.Version)
}
