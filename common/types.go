// Copyright 2024 The movevm Authors
// This file is part of the movevm library.
//
// The movevm library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The movevm library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.

// Package common holds the identifier and hash primitives shared by every
// other package: object and address identifiers, transaction digests, and
// the monotonic sequence numbers used for object versioning.
package common

import (
	"encoding/hex"
	"fmt"
)

const hashLength = 32

// ObjectId uniquely identifies an object in the store.
type ObjectId [hashLength]byte

// Address identifies an account that can own objects.
type Address [hashLength]byte

// TxDigest identifies a transaction.
type TxDigest [hashLength]byte

// Digest is a generic object/content digest.
type Digest [hashLength]byte

var (
	// ZeroAddress is the system address (e.g. the sender of system transactions).
	ZeroAddress = Address{}
	// ZeroObjectId is used as a placeholder for unmetered transactions.
	ZeroObjectId = ObjectId{}
	// ObjectDigestDeleted is the sentinel digest recorded for deleted/unwrapped objects.
	ObjectDigestDeleted = Digest{0xde}
	// ObjectDigestWrapped is the sentinel digest recorded for wrapped objects.
	ObjectDigestWrapped = Digest{0x01}
)

func (id ObjectId) String() string { return hex.EncodeToString(id[:]) }
func (a Address) String() string   { return hex.EncodeToString(a[:]) }
func (d TxDigest) String() string  { return hex.EncodeToString(d[:]) }
func (d Digest) String() string    { return hex.EncodeToString(d[:]) }

// AddressFromObjectId reinterprets an ObjectId as an Address. Object owners
// (ObjectOwner) and account owners (AddressOwner) share the same 32-byte
// identifier space, exactly as in the original object model.
func AddressFromObjectId(id ObjectId) Address { return Address(id) }

// ObjectIdFromAddress reinterprets an Address as an ObjectId, used when a
// Move resource address is treated as an object id for resource lookups.
func ObjectIdFromAddress(a Address) ObjectId { return ObjectId(a) }

// Less provides the ascending ordering effects production requires (§4.6, §5).
func (id ObjectId) Less(other ObjectId) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

// ErrorInvariant formats a consistent panic message for programmer-error
// invariant violations (spec.md §7): these never surface as user errors.
func ErrorInvariant(format string, args ...interface{}) error {
	return fmt.Errorf("invariant violation: "+format, args...)
}
