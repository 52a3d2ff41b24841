// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	oed25519 "github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
)

var (
	TestPrivateKey = PrivateKey(
		[PrivateKeyLen]byte{
			32, 241, 118, 222, 210, 13, 164, 128, 3, 18,
			109, 215, 176, 215, 168, 171, 194, 181, 4, 11,
			253, 199, 173, 240, 107, 148, 127, 190, 48, 164,
			12, 48, 115, 50, 124, 153, 59, 53, 196, 150, 168,
			143, 151, 235, 222, 128, 136, 161, 9, 40, 139, 85,
			182, 153, 68, 135, 62, 166, 45, 235, 251, 246, 69, 7,
		},
	)
	oed25519options = &oed25519.Options{
		Verify: oed25519.VerifyOptionsZIP_215,
	}

	TestPublicKey = []byte{
		115, 50, 124, 153, 59, 53, 196, 150, 168, 143, 151, 235,
		222, 128, 136, 161, 9, 40, 139, 85, 182, 153, 68, 135,
		62, 166, 45, 235, 251, 246, 69, 7,
	}
)

func TestGeneratePrivateKeyDifferent(t *testing.T) {
	require := require.New(t)
	const numKeysToGenerate int = 10

	m := make(map[PrivateKey]bool)
	for i := 0; i < numKeysToGenerate; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		require.NotEqual(EmptyPrivateKey, priv)
		require.False(m[priv], "Duplicate PrivateKey generated")
		m[priv] = true
	}
}

func TestPublicKeyValid(t *testing.T) {
	require := require.New(t)
	var expectedPubKey PublicKey
	copy(expectedPubKey[:], TestPublicKey)
	require.Equal(expectedPubKey, TestPrivateKey.PublicKey())
}

func TestSignVerify(t *testing.T) {
	require := require.New(t)
	msg := []byte("increment")

	sig := Sign(msg, TestPrivateKey)
	require.True(Verify(msg, TestPrivateKey.PublicKey(), sig))
	require.False(Verify([]byte("decrement"), TestPrivateKey.PublicKey(), sig))

	other, err := GeneratePrivateKey()
	require.NoError(err)
	require.False(Verify(msg, other.PublicKey(), sig))
}

func TestHexRoundTrip(t *testing.T) {
	require := require.New(t)

	priv, err := HexToKey(TestPrivateKey.ToHex())
	require.NoError(err)
	require.Equal(TestPrivateKey, priv)

	_, err = HexToKey("0xdeadbeef")
	require.ErrorIs(err, ErrInvalidPrivateKey)
}

func TestSaveLoadKey(t *testing.T) {
	require := require.New(t)
	filename := filepath.Join(t.TempDir(), "key.pk")

	require.NoError(TestPrivateKey.Save(filename))
	priv, err := LoadKey(filename)
	require.NoError(err)
	require.Equal(TestPrivateKey, priv)
}

// Signatures must verify the same under another ZIP-215 implementation.
func TestSignMatchesZIP215(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 8; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		pub := priv.PublicKey()
		msg := []byte{byte(i), 0x80}

		sig := Sign(msg, priv)
		require.True(oed25519.VerifyWithOptions(pub[:], msg, sig[:], oed25519options))

		osig := oed25519.Sign(oed25519.PrivateKey(priv[:]), msg)
		require.True(Verify(msg, pub, Signature(osig)))
	}
}

func BenchmarkConsensusVerifySingle(b *testing.B) {
	require := require.New(b)

	msg := []byte("set")
	priv, err := GeneratePrivateKey()
	require.NoError(err)
	sig := Sign(msg, priv)
	pub := priv.PublicKey()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		require.True(Verify(msg, pub, sig))
	}
}

func BenchmarkOasisVerifySingle(b *testing.B) {
	require := require.New(b)

	msg := []byte("set")
	pub, priv, err := oed25519.GenerateKey(nil)
	require.NoError(err)
	sig := oed25519.Sign(priv, msg)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		require.True(oed25519.VerifyWithOptions(pub, msg, sig, oed25519options))
	}
}
