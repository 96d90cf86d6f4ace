// Package receiver decodes RC receiver byte streams (iBus, CRSF and ELRS)
// into channel values and maps them to normalized stick commands.
package receiver

import (
	"errors"
	"fmt"
	"strings"
)

// NumChannels is the number of RC channels tracked for every protocol.
const NumChannels = 16

// Channel values in microseconds.
const (
	MinRxValue     = 988
	MaxRxValue     = 2012
	NeutralRxValue = 1500
)

var (
	// ErrUnknownProtocol is returned for an unsupported protocol name.
	ErrUnknownProtocol = errors.New("receiver: unknown protocol")
	// ErrChecksum is reported for frames dropped on a checksum mismatch.
	ErrChecksum = errors.New("receiver: checksum mismatch")
	// ErrInvalidConfig is wrapped by every Config and Mapping validation
	// failure.
	ErrInvalidConfig = errors.New("receiver: invalid config")
)

// Protocol selects the receiver wire format.
type Protocol int

// Supported receiver protocols
const (
	ProtocolIBus Protocol = iota
	ProtocolCRSF
	ProtocolELRS
)

func (p Protocol) String() string {
	switch p {
	case ProtocolIBus:
		return "ibus"
	case ProtocolCRSF:
		return "crsf"
	case ProtocolELRS:
		return "elrs"
	}
	return fmt.Sprintf("protocol(%d)", int(p))
}

// BaudRate returns the UART speed the protocol runs at.
func (p Protocol) BaudRate() int {
	switch p {
	case ProtocolCRSF, ProtocolELRS:
		return 420000
	}
	return 115200
}

// ParseProtocol returns the Protocol named s, case-insensitively.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ibus":
		return ProtocolIBus, nil
	case "crsf":
		return ProtocolCRSF, nil
	case "elrs":
		return ProtocolELRS, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Protocol) UnmarshalText(text []byte) error {
	v, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Parser is a byte-fed frame decoder.
type Parser interface {
	// Feed consumes one byte and reports whether it completed a valid
	// channel frame.
	Feed(b byte) bool
	// Channels returns the channels of the last valid frame in
	// microseconds.
	Channels() [NumChannels]uint16
	// Stats returns the number of valid frames and of frames dropped on a
	// checksum mismatch.
	Stats() (frames, errors uint32)
}

// NewParser returns the parser for p.
func NewParser(p Protocol) (Parser, error) {
	switch p {
	case ProtocolIBus:
		return NewIBusParser(), nil
	case ProtocolCRSF:
		return NewCRSFParser(), nil
	case ProtocolELRS:
		return NewELRSParser(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownProtocol, p)
}
