// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"errors"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/crypto/ed25519"
)

var (
	// ErrInvalidKeyType is returned when an invalid key type is provided
	ErrInvalidKeyType = errors.New("invalid key type")

	ErrInvalidPrivateKeySize = errors.New("invalid private key size")
)

// PrivateKey pairs the raw bytes of a key with the address it controls.
type PrivateKey struct {
	Address codec.Address
	Bytes   []byte
}

// GetFactory returns the [chain.AuthFactory] for a given private key.
func GetFactory(pk *PrivateKey) (chain.AuthFactory, error) {
	switch pk.Address.TypeID() {
	case ED25519ID:
		if len(pk.Bytes) != ed25519.PrivateKeyLen {
			return nil, ErrInvalidPrivateKeySize
		}
		return NewED25519Factory(ed25519.PrivateKey(pk.Bytes)), nil
	default:
		return nil, ErrInvalidKeyType
	}
}

type ED25519PrivateKeyFactory struct{}

func NewED25519PrivateKeyFactory() *ED25519PrivateKeyFactory {
	return &ED25519PrivateKeyFactory{}
}

func (*ED25519PrivateKeyFactory) GeneratePrivateKey() (*PrivateKey, error) {
	p, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{
		Address: NewED25519Address(p.PublicKey()),
		Bytes:   p[:],
	}, nil
}

func (*ED25519PrivateKeyFactory) LoadPrivateKey(p []byte) (*PrivateKey, error) {
	if len(p) != ed25519.PrivateKeyLen {
		return nil, ErrInvalidPrivateKeySize
	}
	pk := ed25519.PrivateKey(p)
	return &PrivateKey{
		Address: NewED25519Address(pk.PublicKey()),
		Bytes:   p,
	}, nil
}

// Register adds every supported auth to [parser].
func Register(parser *codec.TypeParser[chain.Auth]) error {
	return parser.Register(ED25519ID, UnmarshalED25519)
}
