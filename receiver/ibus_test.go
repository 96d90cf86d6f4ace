package receiver

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func packIBus(channels [IBusNumChannels]uint16) []byte {
	packet := []byte{IBusHeader1, IBusHeader2}
	for _, ch := range channels {
		packet = append(packet, byte(ch), byte(ch>>8))
	}
	sum := IBusChecksum(packet)
	return append(packet, byte(sum), byte(sum>>8))
}

func testIBusChannels() [IBusNumChannels]uint16 {
	var channels [IBusNumChannels]uint16
	for i := range channels {
		channels[i] = 1000 + uint16(i)*50
	}
	return channels
}

func TestIBusFrame(t *testing.T) {
	c := qt.New(t)
	p := NewIBusParser()
	packet := packIBus(testIBusChannels())
	c.Assert(packet, qt.HasLen, IBusPacketSize)

	c.Assert(feedAll(p, packet), qt.Equals, 1)
	got := p.Channels()
	for i, want := range testIBusChannels() {
		c.Assert(got[i], qt.Equals, want, qt.Commentf("CH%d", i+1))
	}
	c.Assert(got[14], qt.Equals, uint16(0))
	c.Assert(got[15], qt.Equals, uint16(0))
}

func TestIBusChecksumMismatch(t *testing.T) {
	c := qt.New(t)
	p := NewIBusParser()
	packet := packIBus(testIBusChannels())
	packet[5]++

	c.Assert(feedAll(p, packet), qt.Equals, 0)
	frames, errs := p.Stats()
	c.Assert(frames, qt.Equals, uint32(0))
	c.Assert(errs, qt.Equals, uint32(1))
	c.Assert(p.Channels(), qt.Equals, [NumChannels]uint16{})
}

func TestIBusHeaderResync(t *testing.T) {
	c := qt.New(t)
	p := NewIBusParser()
	stream := append([]byte{0x20, 0x41, 0x00, 0x20}, packIBus(testIBusChannels())...)
	c.Assert(feedAll(p, stream), qt.Equals, 1)
}

func TestIBusChecksum(t *testing.T) {
	c := qt.New(t)
	c.Assert(IBusChecksum(nil), qt.Equals, uint16(0xFFFF))
	c.Assert(IBusChecksum([]byte{0x20, 0x40}), qt.Equals, uint16(0xFFFF-0x60))
}
