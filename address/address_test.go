package address

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-activator/ledger"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "S-MRCC-2YLS-8M54-3CMAJ", Encode(1739068987193023818, "S"))
	assert.Equal(t, "TS-MRCC-2YLS-8M54-3CMAJ", Encode(1739068987193023818, "TS"))
	assert.Equal(t, "2222-2222-2222-22222", Encode(0, ""))
	assert.Equal(t, "S-ZZZZ-ZZZZ-QY2K-HZZZZ", Encode(math.MaxUint64, "S"))
}

func TestRoundTrip(t *testing.T) {
	ids := []ledger.AccountID{
		0,
		1,
		31,
		32,
		1739068987193023818,
		6502115112683865257,
		12345678901234567890,
		math.MaxUint64,
	}

	for _, id := range ids {
		for _, prefix := range []string{"", "S", "TS"} {
			addr := Encode(id, prefix)
			assert.True(t, IsAddress(addr), addr)

			decoded, err := Decode(addr)
			require.NoError(t, err, addr)
			assert.Equal(t, id, decoded, addr)
		}
	}
}

func TestDecode_CaseInsensitive(t *testing.T) {
	id, err := Decode("s-mrcc-2yls-8m54-3cmaj")
	require.NoError(t, err)
	assert.EqualValues(t, 1739068987193023818, id)

	id, err = Decode("  S-MRCC-2YLS-8M54-3CMAJ ")
	require.NoError(t, err)
	assert.EqualValues(t, 1739068987193023818, id)
}

func TestDecode_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"1739068987193023818",
		"S-MRCC-2YLS-8M54",
		"S-MRCC-2YLS-8M54-3CMA",
		"S-MRCC-2YLS-8M54-3CMAJJ",
		"S-MRCC-2YLS-8M54-3CMAK", // checksum
		"S-MRCD-2YLS-8M54-3CMAJ", // checksum
		"S-MRCC-2YLS-8M54-3CMA0", // not in alphabet
		"S-MRCC-2YLS-8M54-3CMAI",
	}

	for _, s := range invalid {
		_, err := Decode(s)
		assert.True(t, errors.Is(err, ErrInvalidAddress), s)
	}
}

func TestIsAddress(t *testing.T) {
	assert.True(t, IsAddress("S-MRCC-2YLS-8M54-3CMAJ"))
	assert.True(t, IsAddress("MRCC-2YLS-8M54-3CMAJ"))
	assert.True(t, IsAddress("ts-mrcc-2yls-8m54-3cmaj"))

	assert.False(t, IsAddress("1739068987193023818"))
	assert.False(t, IsAddress("S-MRCC-2YLS-8M54"))
	assert.False(t, IsAddress(strings.Repeat("2", 17)))
	assert.False(t, IsAddress("1-MRCC-2YLS-8M54-3CMAJ"))
}
