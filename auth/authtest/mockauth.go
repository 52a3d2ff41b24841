// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authtest

import (
	"context"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
)

var _ chain.Auth = (*MockAuth)(nil)

// MockAuth reports fixed addresses and returns [VerifyError] from Verify.
type MockAuth struct {
	ActorAddr   codec.Address
	SponsorAddr codec.Address
	VerifyError error
}

func (m *MockAuth) Actor() codec.Address {
	return m.ActorAddr
}

func (*MockAuth) GetTypeID() uint8 {
	return 0xff
}

func (*MockAuth) Marshal(*codec.Packer) {}

func (*MockAuth) Size() int {
	return 0
}

func (m *MockAuth) Sponsor() codec.Address {
	return m.SponsorAddr
}

func (m *MockAuth) Verify(context.Context, []byte) error {
	return m.VerifyError
}
