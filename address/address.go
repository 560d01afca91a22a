// Package address encodes and decodes the Reed-Solomon form of ledger account
// ids, e.g. S-MRCC-2YLS-8M54-3CMAJ.
package address

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-activator/ledger"
)

// ErrInvalidAddress is returned when an address is malformed or fails its
// checksum.
var ErrInvalidAddress = errors.New("invalid address")

const (
	alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	dataLength     = 13
	codewordLength = 17
)

var (
	addressPattern = regexp.MustCompile(`(?i)^([A-Z]+-)?[2-9A-HJ-NP-Z]{4}-[2-9A-HJ-NP-Z]{4}-[2-9A-HJ-NP-Z]{4}-[2-9A-HJ-NP-Z]{5}$`)

	gexp = [32]int{1, 2, 4, 8, 16, 5, 10, 20, 13, 26, 17, 7, 14, 28, 29, 31, 27, 19, 3, 6, 12, 24, 21, 15, 30, 25, 23, 11, 22, 9, 18, 1}
	glog = [32]int{0, 0, 1, 18, 2, 5, 19, 11, 3, 29, 6, 27, 20, 8, 12, 23, 4, 10, 30, 17, 7, 22, 28, 26, 21, 25, 9, 16, 13, 14, 24, 15}

	// codewordMap maps the position of a symbol in the printed address to its
	// position in the codeword.
	codewordMap = [codewordLength]int{3, 2, 1, 0, 7, 6, 5, 4, 13, 14, 15, 16, 12, 8, 9, 10, 11}
)

// IsAddress returns whether s has the syntax of an address, with or without a
// prefix. The checksum is not verified.
func IsAddress(s string) bool {
	return addressPattern.MatchString(strings.TrimSpace(s))
}

// Encode returns the address of id with the provided prefix. An empty prefix
// yields the bare XXXX-XXXX-XXXX-XXXXX form.
func Encode(id ledger.AccountID, prefix string) string {
	var codeword [codewordLength]int
	for i := 0; i < dataLength; i++ {
		codeword[i] = int(uint64(id)>>(5*uint(i))) & 31
	}

	var p [4]int
	for i := dataLength - 1; i >= 0; i-- {
		fb := codeword[i] ^ p[3]
		p[3] = p[2] ^ gmult(30, fb)
		p[2] = p[1] ^ gmult(6, fb)
		p[1] = p[0] ^ gmult(9, fb)
		p[0] = gmult(17, fb)
	}
	copy(codeword[dataLength:], p[:])

	var sb strings.Builder
	if prefix != "" {
		sb.WriteString(prefix)
		sb.WriteByte('-')
	}
	for i := 0; i < codewordLength; i++ {
		sb.WriteByte(alphabet[codeword[codewordMap[i]]])
		if i&3 == 3 && i < dataLength {
			sb.WriteByte('-')
		}
	}

	return sb.String()
}

// Decode returns the account id encoded in s. The prefix, if any, is ignored
// and decoding is case insensitive.
func Decode(s string) (ledger.AccountID, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !addressPattern.MatchString(s) {
		return 0, errors.Wrapf(ErrInvalidAddress, "malformed address %q", s)
	}

	// The prefix is alphabetic and may itself contain alphabet symbols.
	if parts := strings.Split(s, "-"); len(parts) == 5 {
		s = strings.Join(parts[1:], "-")
	}

	var codeword [codewordLength]int
	var n int
	for _, r := range s {
		if r == '-' {
			continue
		}
		codeword[codewordMap[n]] = strings.IndexRune(alphabet, r)
		n++
	}

	if !isValid(codeword) {
		return 0, errors.Wrapf(ErrInvalidAddress, "checksum mismatch for %q", s)
	}

	// 13 symbols carry 65 bits; the top symbol may only use four of its five.
	if codeword[dataLength-1] > 15 {
		return 0, errors.Wrapf(ErrInvalidAddress, "%q overflows an account id", s)
	}

	var id uint64
	for i := dataLength - 1; i >= 0; i-- {
		id = id<<5 | uint64(codeword[i])
	}

	return ledger.AccountID(id), nil
}

func isValid(codeword [codewordLength]int) bool {
	var sum int
	for i := 1; i < 5; i++ {
		var t int
		for j := 0; j < 31; j++ {
			if j > 12 && j < 27 {
				continue
			}

			pos := j
			if j > 26 {
				pos -= 14
			}
			t ^= gmult(codeword[pos], gexp[(i*j)%31])
		}
		sum |= t
	}

	return sum == 0
}

func gmult(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}

	return gexp[(glog[a]+glog[b])%31]
}
