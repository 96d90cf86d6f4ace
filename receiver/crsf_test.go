package receiver

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// A captured RC channels frame: length 24, type 0x16, 22 payload bytes
// with every channel at 992, and CRC 0xad.
var centeredCRSFFrame = []byte{
	0xc8, 0x18, 0x16, 0xe0, 0x03, 0x1f, 0xf8, 0xc0, 0x07, 0x3e, 0xf0, 0x81, 0x0f, 0x7c,
	0xe0, 0x03, 0x1f, 0xf8, 0xc0, 0x07, 0x3e, 0xf0, 0x81, 0x0f, 0x7c, 0xad,
}

// packCRSF builds an RC channels frame from raw 11-bit values.
func packCRSF(values [NumChannels]uint16) []byte {
	frame := []byte{CRSFFlightController, crsfPayloadSize + 2, CRSFFrameTypeRCChannels}
	var acc uint32
	var bits uint
	for _, v := range values {
		acc |= uint32(v&0x07FF) << bits
		bits += 11
		for bits >= 8 {
			frame = append(frame, byte(acc))
			acc >>= 8
			bits -= 8
		}
	}
	return append(frame, crc8(frame[2:]))
}

func feedAll(p Parser, data []byte) (completed int) {
	for _, b := range data {
		if p.Feed(b) {
			completed++
		}
	}
	return completed
}

func TestCRSFCapturedFrame(t *testing.T) {
	c := qt.New(t)
	p := NewCRSFParser()

	for i, b := range centeredCRSFFrame {
		done := p.Feed(b)
		c.Assert(done, qt.Equals, i == len(centeredCRSFFrame)-1, qt.Commentf("byte %d", i))
	}

	for i, ch := range p.Channels() {
		c.Assert(ch, qt.Equals, uint16(NeutralRxValue), qt.Commentf("CH%d", i+1))
	}
	frames, errs := p.Stats()
	c.Assert(frames, qt.Equals, uint32(1))
	c.Assert(errs, qt.Equals, uint32(0))
}

func TestCRSFChecksumMismatch(t *testing.T) {
	c := qt.New(t)
	p := NewCRSFParser()

	bad := append([]byte(nil), centeredCRSFFrame...)
	bad[10] ^= 0x01
	c.Assert(feedAll(p, bad), qt.Equals, 0)

	frames, errs := p.Stats()
	c.Assert(frames, qt.Equals, uint32(0))
	c.Assert(errs, qt.Equals, uint32(1))

	// The parser resynchronizes on the next frame.
	c.Assert(feedAll(p, centeredCRSFFrame), qt.Equals, 1)
}

func TestCRSFSkipsOtherFrames(t *testing.T) {
	c := qt.New(t)
	p := NewCRSFParser()

	// Link statistics frame whose payload contains a sync byte.
	linkStats := []byte{0xc8, 0x0c, 0x14, 0xc8, 0x18, 0x16, 0, 0, 0, 0, 0, 0, 0, 0x5a}
	stream := append([]byte{0x00, 0xff}, linkStats...)

	var values [NumChannels]uint16
	for i := range values {
		values[i] = CRSFChannelValueMin + uint16(i)*100
	}
	stream = append(stream, packCRSF(values)...)

	c.Assert(feedAll(p, stream), qt.Equals, 1)
	_, errs := p.Stats()
	c.Assert(errs, qt.Equals, uint32(0))

	channels := p.Channels()
	for i, v := range values {
		c.Assert(channels[i], qt.Equals, CRSFToMicros(v), qt.Commentf("CH%d", i+1))
	}
}

func TestCRSFRejectsBadLength(t *testing.T) {
	c := qt.New(t)
	p := NewCRSFParser()
	c.Assert(feedAll(p, []byte{0xc8, 0x01, 0xc8, 0x50}), qt.Equals, 0)
	c.Assert(feedAll(p, centeredCRSFFrame), qt.Equals, 1)
}

func TestCRSFToMicros(t *testing.T) {
	c := qt.New(t)
	c.Assert(CRSFToMicros(CRSFChannelValueMin), qt.Equals, uint16(988))
	c.Assert(CRSFToMicros(CRSFChannelValueMid), qt.Equals, uint16(1500))
	c.Assert(CRSFToMicros(CRSFChannelValueMax), qt.Equals, uint16(2011))
}

func TestCRC8(t *testing.T) {
	c := qt.New(t)
	c.Assert(crc8(centeredCRSFFrame[2:CRSFFrameSize-1]), qt.Equals, byte(0xad))
}
