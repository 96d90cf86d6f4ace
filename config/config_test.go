package config

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/BryanSouza91/RotorFC/imu"
	"github.com/BryanSouza91/RotorFC/mixer"
	"github.com/BryanSouza91/RotorFC/receiver"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

func TestDefaultIsValid(t *testing.T) {
	c := qt.New(t)
	c.Assert(Default().Validate(), qt.IsNil)
}

func TestParseOverlaysDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := Parse([]byte(`
stabilize:
  level_p: 0.2
  trim: [1, -2, 0]
imu:
  mount: inverted
receiver:
  protocol: crsf
  timeout: 250ms
  serial:
    device: /dev/ttyUSB0
mixer:
  frame: elevon
`))
	c.Assert(err, qt.IsNil)

	want := Default()
	want.Stabilize.LevelP = 0.2
	want.Stabilize.Trim = [stabilize.NumAxes]int32{1, -2, 0}
	want.IMU.Mount = imu.Inverted
	want.Receiver.Protocol = receiver.ProtocolCRSF
	want.Receiver.Timeout = 250 * time.Millisecond
	want.Receiver.Serial.Device = "/dev/ttyUSB0"
	want.Mixer.Frame = "elevon"
	c.Assert(cfg, qt.DeepEquals, want)
}

func TestParseEmptyDocument(t *testing.T) {
	c := qt.New(t)
	cfg, err := Parse(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, Default())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	c := qt.New(t)
	_, err := Parse([]byte("stabilize:\n  levelp: 1\n"))
	c.Assert(err, qt.ErrorMatches, `(?s)parse config: .*field levelp not found.*`)
}

func TestParseValidates(t *testing.T) {
	c := qt.New(t)
	_, err := Parse([]byte("mixer:\n  frame: hexa\nstabilize:\n  max_lean_angle: 120\n"))
	c.Assert(err, qt.ErrorIs, mixer.ErrUnknownFrame)
	c.Assert(err, qt.ErrorIs, stabilize.ErrInvalidConfig)

	_, err = Parse([]byte("receiver:\n  protocol: sbus\n"))
	c.Assert(err, qt.ErrorIs, receiver.ErrUnknownProtocol)

	_, err = Parse([]byte("loop:\n  period: 5ms\n"))
	c.Assert(err, qt.ErrorMatches, "config: imu period 10ms differs from loop period 5ms")
}

func TestLoad(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "rotor.yaml")
	err := os.WriteFile(path, []byte("loop:\n  throttle_cut: 0.1\n"), 0o644)
	c.Assert(err, qt.IsNil)

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Loop.ThrottleCut, qt.Equals, 0.1)

	_, err = Load(filepath.Join(c.TempDir(), "missing.yaml"))
	c.Assert(err, qt.ErrorIs, fs.ErrNotExist)
}

func TestEncodeIsLoadable(t *testing.T) {
	c := qt.New(t)
	cfg := Default()
	cfg.Receiver.Protocol = receiver.ProtocolELRS
	cfg.IMU.Mount = imu.Inverted

	var buf bytes.Buffer
	c.Assert(cfg.Encode(&buf), qt.IsNil)
	c.Assert(buf.String(), qt.Contains, "protocol: elrs")
	c.Assert(buf.String(), qt.Contains, "period: 10ms")

	got, err := Parse(buf.Bytes())
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, cfg)
}
