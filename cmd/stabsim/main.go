// Command stabsim flies the stabilizer against a simulated airframe and
// prints one CSV row per control tick.
//
// Sticks come from a named script, or live from a receiver on a serial
// port with -rx.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/BryanSouza91/RotorFC/config"
	"github.com/BryanSouza91/RotorFC/flight"
	"github.com/BryanSouza91/RotorFC/internal/log"
	"github.com/BryanSouza91/RotorFC/mixer"
	"github.com/BryanSouza91/RotorFC/receiver"
	"github.com/BryanSouza91/RotorFC/sim"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

var (
	configFlag    = flag.String("config", "", "YAML configuration file (optional, defaults used otherwise)")
	scriptFlag    = flag.String("script", "roll-step", "stick script to play")
	listFlag      = flag.Bool("l", false, "list available scripts and frames")
	rxFlag        = flag.Bool("rx", false, "read sticks from the serial receiver in the configuration")
	durationFlag  = flag.Duration("duration", 30*time.Second, "how long to fly with -rx")
	rollFlag      = flag.Float64("roll", 0, "initial roll angle in degrees")
	pitchFlag     = flag.Float64("pitch", 0, "initial pitch angle in degrees")
	rollRateFlag  = flag.Float64("roll-rate", 0, "initial roll rate disturbance in degrees/second")
	pitchRateFlag = flag.Float64("pitch-rate", 0, "initial pitch rate disturbance in degrees/second")
	dumpFlag      = flag.Bool("dump-config", false, "print the effective configuration and exit")
	logFlag       = flag.String("log", "info", "log level: debug, info, warn or error")
)

func run() error {
	flag.Parse()
	log.Init(*logFlag)

	if *listFlag {
		return writeCatalog(os.Stdout)
	}

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			return err
		}
	}
	if *dumpFlag {
		return cfg.Encode(os.Stdout)
	}

	stab, err := stabilize.New(cfg.Stabilize)
	if err != nil {
		return err
	}
	mix, err := mixer.New(cfg.Mixer.Frame)
	if err != nil {
		return err
	}
	plantCfg := sim.DefaultPlantConfig()
	plantCfg.Period = cfg.Loop.Period
	plantCfg.GyroScale = cfg.IMU.GyroScale
	plant := sim.NewPlant(plantCfg, mix)
	plant.SetAttitude(*rollFlag, *pitchFlag)
	plant.Kick(stabilize.Roll, *rollRateFlag)
	plant.Kick(stabilize.Pitch, *pitchRateFlag)

	rec := newRecorder(os.Stdout, plant, mix.Count())
	defer rec.Flush()

	parts := flight.Parts{
		Stabilizer: stab,
		Mixer:      mix,
		Samples:    plant,
		Motors:     rec,
		Log:        log.With("component", "loop"),
	}

	if *rxFlag {
		return flyLive(cfg, parts, rec)
	}

	script, err := sim.LoadScript(*scriptFlag)
	if err != nil {
		return err
	}
	parts.Commands = script
	loop, err := flight.New(cfg.Loop, parts)
	if err != nil {
		return err
	}
	for i := 0; i < script.Len(); i++ {
		if err := loop.Tick(); err != nil {
			log.Warn("tick failed", "tick", loop.Ticks(), "err", err)
		}
	}
	log.Info("script done", "script", *scriptFlag, "ticks", loop.Ticks(), "state", loop.State())
	return rec.Err()
}

// writeCatalog lists the stick scripts and the mixer frames with their
// tables.
func writeCatalog(w io.Writer) error {
	var b strings.Builder
	b.WriteString("scripts:\n")
	for _, name := range sim.Scripts() {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	b.WriteString("frames:\n")
	for _, name := range mixer.Frames() {
		mix, err := mixer.New(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "  %s\n", name)
		for i, r := range mix.Table() {
			fmt.Fprintf(&b, "    m%d throttle %+.0f roll %+.0f pitch %+.0f yaw %+.0f\n", i+1, r.Throttle, r.Roll, r.Pitch, r.Yaw)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// flyLive runs the loop in real time with sticks from the serial receiver.
func flyLive(cfg *config.Config, parts flight.Parts, rec *recorder) error {
	parser, err := receiver.NewParser(cfg.Receiver.Protocol)
	if err != nil {
		return err
	}
	store := receiver.NewStore()
	parts.Commands = receiver.NewSource(store, cfg.Receiver.Mapping, cfg.Receiver.Timeout)
	loop, err := flight.New(cfg.Loop, parts)
	if err != nil {
		return err
	}

	port, err := receiver.OpenSerial(cfg.Receiver.Serial, cfg.Receiver.Protocol)
	if err != nil {
		return err
	}
	rd := receiver.NewReader(port, parser, store)
	rd.Follow = true
	rd.OnDrop = func(err error) { log.Debug("frame dropped", "err", err) }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *durationFlag)
	defer cancel()

	wait := startReader(ctx, cancel, rd, port)

	log.Info("flying", "device", cfg.Receiver.Serial.Device, "protocol", cfg.Receiver.Protocol, "duration", *durationFlag)
	runErr := loop.Run(ctx)
	wait()

	frames, drops := parser.Stats()
	log.Info("receiver", "frames", frames, "dropped", drops)
	return errors.Join(runErr, rec.Err())
}

// startReader pumps the receiver in the background. A reader failure
// cancels the flight. The returned wait cancels, closes port to unblock a
// pending Read and returns once the reader has stopped, after which the
// parser may be read.
func startReader(ctx context.Context, cancel context.CancelFunc, rd *receiver.Reader, port io.Closer) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := rd.Run(ctx); err != nil {
			log.Error("receiver stopped", "err", err)
			cancel()
		}
	}()
	return func() {
		cancel()
		if err := port.Close(); err != nil {
			log.Warn("close receiver port", "err", err)
		}
		<-done
	}
}

// recorder forwards motor commands to the plant and writes a CSV row for
// every tick.
type recorder struct {
	plant  *sim.Plant
	w      *csv.Writer
	motors int
	tick   int
	err    error
}

func newRecorder(w io.Writer, plant *sim.Plant, motors int) *recorder {
	r := &recorder{plant: plant, w: csv.NewWriter(w), motors: motors}
	header := []string{"tick", "roll", "pitch", "yaw", "roll_rate", "pitch_rate", "yaw_rate"}
	for i := 0; i < motors; i++ {
		header = append(header, "m"+strconv.Itoa(i+1))
	}
	r.write(header)
	return r
}

func (r *recorder) WriteMotors(m mixer.Motors) error {
	if err := r.plant.WriteMotors(m); err != nil {
		return err
	}
	r.tick++
	att, rates := r.plant.Attitude(), r.plant.Rates()
	row := []string{strconv.Itoa(r.tick)}
	for _, v := range append(att[:], rates[:]...) {
		row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
	}
	for _, v := range m[:r.motors] {
		row = append(row, strconv.Itoa(int(v)))
	}
	r.write(row)
	return nil
}

func (r *recorder) write(row []string) {
	if r.err == nil {
		r.err = r.w.Write(row)
	}
}

func (r *recorder) Flush() {
	r.w.Flush()
	if r.err == nil {
		r.err = r.w.Error()
	}
}

func (r *recorder) Err() error {
	r.Flush()
	if r.err != nil {
		return fmt.Errorf("write csv: %w", r.err)
	}
	return nil
}

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
