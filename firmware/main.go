//go:build tinygo

// Command firmware is the on-target flight controller. Build it with
// tinygo, e.g. tinygo flash -target=xiao-ble ./firmware.
package main

import (
	"fmt"
	"machine"
	"time"

	"github.com/BryanSouza91/RotorFC/flight"
	"github.com/BryanSouza91/RotorFC/imu"
	"github.com/BryanSouza91/RotorFC/mixer"
	"github.com/BryanSouza91/RotorFC/receiver"
	"github.com/BryanSouza91/RotorFC/stabilize"
)

// printLogger logs through println, the only output on target.
type printLogger struct{}

func (printLogger) Info(msg string, args ...any) { println("info:", msg, fmt.Sprint(args...)) }
func (printLogger) Warn(msg string, args ...any) { println("warn:", msg, fmt.Sprint(args...)) }

// halt reports a fatal setup error forever; the watchdog is not running
// yet so the board stays here.
func halt(led *statusLED, msg string, err error) {
	led.pattern = ledFastFlash
	for {
		println(msg, err.Error())
		for i := 0; i < 20; i++ {
			led.update()
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// pollReceiver drains the UART into the parser and stores every complete
// frame.
func pollReceiver(uart *machine.UART, parser receiver.Parser, store *receiver.Store) {
	for uart.Buffered() > 0 {
		b, err := uart.ReadByte()
		if err != nil {
			return
		}
		if parser.Feed(b) {
			store.Update(parser.Channels())
		}
	}
}

func main() {
	time.Sleep(2 * time.Second)
	println("RotorFC - Version", Version)

	led := newStatusLED(statusPin)
	led.pattern = ledFlash

	// --- Hardware Setup ---
	rxCfg := receiver.DefaultConfig()
	rxUART.Configure(machine.UARTConfig{
		BaudRate: uint32(rxCfg.Protocol.BaudRate()),
		TX:       machine.NoPin,
		RX:       machine.UART_RX_PIN,
	})
	parser, err := receiver.NewParser(rxCfg.Protocol)
	if err != nil {
		halt(led, "receiver:", err)
	}
	store := receiver.NewStore()
	println("UART configured for", rxCfg.Protocol.String(), "input.")

	mix, err := mixer.New(frame)
	if err != nil {
		halt(led, "mixer:", err)
	}
	motors, err := newPWMActuator(outputPWM, outputPins, mix.Count(), outputFrequency)
	if err != nil {
		halt(led, "outputs:", err)
	}
	motors.WriteMotors(mix.Idle())
	println("PWM configured for", mix.Count(), "outputs.")

	imuBus.Configure(machine.I2CConfig{Frequency: i2cFrequency})
	imuCfg := imu.DefaultConfig()
	est, err := imu.NewLSM6DS3TR(imuBus, imuCfg)
	if err != nil {
		halt(led, "imu:", err)
	}
	println("LSM6DS3TR initialized. Calibrating, keep the frame still and level...")
	if err := est.Calibrate(imuCfg.CalibrationSamples); err != nil {
		halt(led, "calibration:", err)
	}
	_, gyroBias := est.Bias()
	println("Calibration complete. Gyro bias:", gyroBias[0], gyroBias[1], gyroBias[2])
	// --- End Hardware Setup ---

	stab, err := stabilize.New(stabilize.DefaultConfig())
	if err != nil {
		halt(led, "stabilizer:", err)
	}
	loopCfg := flight.DefaultConfig()
	loop, err := flight.New(loopCfg, flight.Parts{
		Stabilizer: stab,
		Mixer:      mix,
		Commands:   receiver.NewSource(store, rxCfg.Mapping, rxCfg.Timeout),
		Samples:    est,
		Motors:     motors,
		Log:        printLogger{},
	})
	if err != nil {
		halt(led, "loop:", err)
	}

	// Small delay to allow the ESCs to initialize
	time.Sleep(2 * time.Second)

	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: watchdogTimeoutMillis})
	machine.Watchdog.Start()
	println("Initialization complete.")

	ticker := time.NewTicker(loopCfg.Period)
	defer ticker.Stop()
	for {
		<-ticker.C

		pollReceiver(rxUART, parser, store)
		if err := loop.Tick(); err != nil {
			println("tick:", err.Error())
		}
		led.setState(loop.State())
		led.update()

		// Keep the watchdog happy
		machine.Watchdog.Update()
	}
}
