package receiver

// FlySky iBus protocol, as sent by FS-iA6B class receivers.

const (
	IBusHeader1     = 0x20
	IBusHeader2     = 0x40
	IBusNumChannels = 14
	// Header (2) + Channels (14 * 2) + Checksum (2)
	IBusPacketSize = 2 + IBusNumChannels*2 + 2
)

type ibusState int

const (
	ibusWaitingForHeader1 ibusState = iota
	ibusWaitingForHeader2
	ibusReadingPayload
	ibusReadingChecksumLow
	ibusReadingChecksumHigh
)

// IBusParser decodes iBus servo frames.
type IBusParser struct {
	state    ibusState
	packet   [IBusPacketSize]byte
	index    int
	channels [NumChannels]uint16
	frames   uint32
	errors   uint32
}

// NewIBusParser returns a parser waiting for a header.
func NewIBusParser() *IBusParser {
	return &IBusParser{}
}

// Feed implements Parser.
func (p *IBusParser) Feed(b byte) bool {
	switch p.state {
	case ibusWaitingForHeader1:
		if b == IBusHeader1 {
			p.packet[0] = b
			p.state = ibusWaitingForHeader2
		}
	case ibusWaitingForHeader2:
		if b == IBusHeader2 {
			p.packet[1] = b
			p.index = 2
			p.state = ibusReadingPayload
		} else if b != IBusHeader1 {
			p.state = ibusWaitingForHeader1 // Invalid header sequence, reset
		}
	case ibusReadingPayload:
		p.packet[p.index] = b
		p.index++
		if p.index >= IBusPacketSize-2 {
			p.state = ibusReadingChecksumLow
		}
	case ibusReadingChecksumLow:
		p.packet[p.index] = b
		p.index++
		p.state = ibusReadingChecksumHigh
	case ibusReadingChecksumHigh:
		p.packet[p.index] = b
		p.state = ibusWaitingForHeader1
		p.index = 0

		got := uint16(p.packet[IBusPacketSize-2]) | uint16(p.packet[IBusPacketSize-1])<<8
		if got != IBusChecksum(p.packet[:IBusPacketSize-2]) {
			p.errors++
			return false
		}
		for i := 0; i < IBusNumChannels; i++ {
			p.channels[i] = uint16(p.packet[2+2*i]) | uint16(p.packet[3+2*i])<<8
		}
		p.frames++
		return true
	}
	return false
}

// Channels implements Parser. iBus carries 14 channels; the last two stay
// zero.
func (p *IBusParser) Channels() [NumChannels]uint16 {
	return p.channels
}

// Stats implements Parser.
func (p *IBusParser) Stats() (frames, errors uint32) {
	return p.frames, p.errors
}

// IBusChecksum returns 0xFFFF minus the byte sum of data.
func IBusChecksum(data []byte) uint16 {
	sum := uint16(0xFFFF)
	for _, b := range data {
		sum -= uint16(b)
	}
	return sum
}
