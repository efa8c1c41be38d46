package suiclient

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var (
	// Transaction digests are base58, typically 43-44 characters.
	digestRe = regexp.MustCompile(`^[A-HJ-NP-Za-km-z1-9]{43,44}$`)
	// Addresses are 32 bytes of hex with a 0x prefix.
	addressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
)

// IsValidDigest reports whether s looks like a Sui transaction digest.
func IsValidDigest(s string) bool {
	return digestRe.MatchString(s)
}

// IsValidAddress reports whether s looks like a Sui address.
func IsValidAddress(s string) bool {
	return addressRe.MatchString(s)
}

// FormatSui renders a MIST amount (1 SUI = 1e9 MIST) as a SUI decimal with up
// to four fractional digits. Unparseable input comes back unchanged.
func FormatSui(mist string) string {
	v, ok := new(big.Int).SetString(mist, 10)
	if !ok {
		return mist
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(abs, big.NewInt(1_000_000_000), frac)

	out := whole.String()
	if frac.Sign() != 0 {
		f := fmt.Sprintf("%09d", frac)
		f = strings.TrimRight(f[:4], "0")
		if f != "" {
			out += "." + f
		}
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ShortenAddress abbreviates an address for display: 0x1234...abcd.
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// ShortenDigest abbreviates a digest for display.
func ShortenDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:6] + "..." + digest[len(digest)-6:]
}

// CoinSymbol extracts the trailing symbol from a fully qualified coin type,
// e.g. "0x2::sui::SUI" -> "SUI".
func CoinSymbol(coinType string) string {
	parts := strings.Split(coinType, "::")
	if len(parts) == 0 {
		return coinType
	}
	return parts[len(parts)-1]
}

// TypeSuffix keeps the last module::name segments of a Move type for display.
func TypeSuffix(moveType string) string {
	parts := strings.Split(moveType, "::")
	if len(parts) <= 2 {
		return moveType
	}
	return strings.Join(parts[len(parts)-2:], "::")
}
