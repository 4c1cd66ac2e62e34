// Package ipv4 provides a typed IPv4 address value with explicit validation
// and inclusive range membership. IPv6 is out of scope for the whole system;
// callers receive ErrUnsupportedAddressFamily (or ErrInvalidAddress) and must
// decide their own fail-open/fail-closed policy.
package ipv4

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidAddress indicates input that is not a dotted-quad IPv4 string
	// (wrong segment count, non-numeric segment, segment out of 0-255).
	ErrInvalidAddress = errors.New("invalid IPv4 address")

	// ErrUnsupportedAddressFamily indicates syntactically plausible IPv6 input.
	// There is no IPv6 path anywhere in the system.
	ErrUnsupportedAddressFamily = errors.New("unsupported address family")
)

// Addr is an IPv4 address packed into 32 bits, most significant octet first.
type Addr uint32

// Parse converts a dotted-quad string to an Addr. Parse and String round-trip
// for every valid input.
func Parse(s string) (Addr, error) {
	if strings.Contains(s, ":") {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAddressFamily, s)
	}

	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	var addr uint32
	for _, part := range parts {
		// Reject empty segments, signs, and leading zeros beyond a bare "0"
		// ("01" is ambiguous octal notation in some parsers).
		if part == "" || (len(part) > 1 && part[0] == '0') {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		addr = addr<<8 | uint32(n)
	}

	return Addr(addr), nil
}

// String renders the address back to dotted-quad form.
func (a Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}

// InRange reports whether a falls within the inclusive [start, end] range.
// A range with start > end matches nothing.
func (a Addr) InRange(start, end Addr) bool {
	return a >= start && a <= end
}
