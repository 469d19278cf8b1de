// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/movevm/tempstore/common"
)

func TestOwner_Equal_Address(t *testing.T) {
	a := common.Address{0x01}
	b := common.Address{0x02}
	assert.True(t, NewAddressOwner(a).Equal(NewAddressOwner(a)))
	assert.False(t, NewAddressOwner(a).Equal(NewAddressOwner(b)))
}

func TestOwner_Equal_Shared_IgnoresVersion(t *testing.T) {
	s1 := NewSharedOwner(common.SequenceNumber(1))
	s2 := NewSharedOwner(common.SequenceNumber(99))
	assert.True(t, s1.Equal(s2))
}

func TestOwner_Equal_DifferentKinds(t *testing.T) {
	assert.False(t, ImmutableOwner().Equal(NewSharedOwner(0)))
}

func TestOwner_Equal_Object(t *testing.T) {
	id1 := common.ObjectId{0x01}
	id2 := common.ObjectId{0x02}
	assert.True(t, NewObjectOwner(id1).Equal(NewObjectOwner(id1)))
	assert.False(t, NewObjectOwner(id1).Equal(NewObjectOwner(id2)))
}
