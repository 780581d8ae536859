// internal/room/code.go
package room

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	// CodeLength is the number of characters in a room code.
	CodeLength = 4
	// CodeChars is the alphabet codes are drawn from.
	CodeChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// AddressPrefix namespaces host peer addresses on the shared broker.
	AddressPrefix = "rmcs-game-v1-"
)

var ErrInvalidCode = errors.New("invalid room code")

// Code is a short, human-enterable room token. Always uppercase.
type Code string

func (c Code) String() string {
	return string(c)
}

// Generate draws a fresh code. Codes are collision-rare, not unique; a clash
// surfaces later as an address-in-use error from the transport.
func Generate() Code {
	code := make([]byte, CodeLength)
	for i := range CodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(CodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = CodeChars[rand.Intn(len(CodeChars))]
			continue
		}
		code[i] = CodeChars[n.Int64()]
	}
	return Code(code)
}

// Parse normalizes user input (trim, uppercase) and validates it.
func Parse(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != CodeLength {
		return "", fmt.Errorf("%w: want %d characters, got %d", ErrInvalidCode, CodeLength, len(s))
	}
	for _, ch := range s {
		if !strings.ContainsRune(CodeChars, ch) {
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidCode, ch)
		}
	}
	return Code(s), nil
}

// PeerAddress maps a code to the host's transport address. Any participant can
// compute it from the code alone.
func PeerAddress(c Code) string {
	return AddressPrefix + strings.ToUpper(string(c))
}

// FromPeerAddress recovers the code from a host peer address.
func FromPeerAddress(addr string) (Code, error) {
	rest, ok := strings.CutPrefix(addr, AddressPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a room address", ErrInvalidCode, addr)
	}
	return Parse(rest)
}

// QRCode encodes the room code for sharing from a screen.
func QRCode(c Code) (*qrcode.QRCode, error) {
	q, err := qrcode.New(string(c), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode room code %s: %w", c, err)
	}
	return q, nil
}

// QRString renders the room code QR with half-block characters for terminals.
func QRString(c Code) (string, error) {
	q, err := QRCode(c)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
