// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	// Name is the name of the VM. It is used as the JSON-RPC service name
	// and as the prefix of every metric namespace.
	Name = "countervm"

	// HRP is the human-readable part of every bech32 address.
	HRP = "counter"

	// Symbol of the native asset used to pay fees and record deposits.
	Symbol = "CNT"

	Version = "v0.0.1"
)

// Action TypeIDs
const (
	CreateID uint8 = iota
	IncrementID
	DecrementID
	SetID
	CloseID
)

// Auth TypeIDs
const (
	ED25519ID uint8 = iota
)

// Address TypeIDs. An address is [typeID] || hash, so the id tells a payer
// address apart from a counter record address.
const (
	CounterAddressID uint8 = 0x80
)
