// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package common

// SequenceNumber is a Lamport-style monotonic version counter, assigned to
// every object the transaction reads and, at finalisation, to every object
// it mutates or deletes.
type SequenceNumber uint64

const (
	// SequenceNumberMin is the placeholder version newly-created mutable
	// objects must carry until the store stamps the real, finalised version.
	SequenceNumberMin SequenceNumber = 0
	// SequenceNumberMax is the largest representable sequence number.
	SequenceNumberMax SequenceNumber = ^SequenceNumber(0)
)

// OneAfter returns 1 + s, the next sequence number after s.
func (s SequenceNumber) OneAfter() SequenceNumber { return s + 1 }

// IncrementTo advances the receiver to target. target must be strictly
// greater than the current value; violating this is a programmer error
// (it would break the Lamport monotonicity invariant I8), not a recoverable
// condition, so this panics rather than returning an error.
func (s *SequenceNumber) IncrementTo(target SequenceNumber) {
	if target <= *s {
		panic(ErrorInvariant("sequence number must increase: %d -> %d", *s, target))
	}
	*s = target
}

// ObjectRef is the tuple identifying a specific version of an object.
type ObjectRef struct {
	ID      ObjectId
	Version SequenceNumber
	Digest  Digest
}
