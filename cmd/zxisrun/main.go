package main

import (
	"context"
	"fmt"
	"math"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/config"
	"github.com/ZXIS-dev/ZXIS-Run/internal/control"
	"github.com/ZXIS-dev/ZXIS-Run/internal/ecg"
	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"
	"github.com/ZXIS-dev/ZXIS-Run/internal/motor"
	"github.com/ZXIS-dev/ZXIS-Run/internal/pid"
	"github.com/ZXIS-dev/ZXIS-Run/internal/protocol"
	"github.com/ZXIS-dev/ZXIS-Run/internal/telemetry"
)

const commandBacklog = 16

var (
	cfg           *config.Config
	sampler       ecg.Sampler
	actuator      *motor.Actuator
	controller    *control.Controller
	pipeline      *ecg.Pipeline
	emitter       *protocol.Emitter
	collector     telemetry.Collector
	samplerFaults uint64
)

func initApp() error {
	errFactory := errors.New()

	if err := pid.Write(); err != nil {
		return err
	}

	if cfg.Simulate {
		sampler = ecg.NewSimSampler(cfg.SampleRate, float64(cfg.SimulateBPM), 0.02)
	} else {
		return errFactory.WithMessage(errors.ErrInitSampler,
			"no acquisition front-end configured; run with --simulate")
	}

	var err error
	actuator, err = motor.NewActuator(motor.NewSimDriver(), motor.Limits{Min: cfg.DutyMin, Max: cfg.DutyMax})
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	controller, err = control.NewController(control.Config{
		Period:      time.Duration(cfg.ControlPeriodMS) * time.Millisecond,
		Kp:          cfg.Kp,
		Deadband:    cfg.Deadband,
		HRSmoothing: cfg.HRSmoothing,
	}, actuator)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	pipeline, err = ecg.NewPipeline(ecg.Config{
		BaselineAlpha:  cfg.BaselineAlpha,
		EnvelopeAlpha:  cfg.EnvelopeAlpha,
		ThresholdAlpha: cfg.ThresholdAlpha,
		ThresholdGain:  cfg.ThresholdGain,
		Refractory:     time.Duration(cfg.RefractoryMS) * time.Millisecond,
		RRWindow:       cfg.RRWindow,
		BPMMin:         cfg.BPMMin,
		BPMMax:         cfg.BPMMax,
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	emitter = protocol.NewEmitter(nil)

	if cfg.Telemetry {
		collector, err = telemetry.NewService(telemetry.Config{DBPath: cfg.TelemetryDB})
		if err != nil {
			return errFactory.Wrap(errors.ErrInitApp, err)
		}
	}

	return nil
}

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := initApp(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	commands := make(chan protocol.Command, commandBacklog)
	if cfg.ListenAddr != "" {
		listener, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			logger.FatalWithCode(errors.New().Wrap(errors.ErrListenAddr, err)).
				Msg("failed to listen on configured address")
		}
		defer listener.Close()
		go serve(ctx, listener, commands)
	}

	if err := loop(ctx, commands); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrMainLoop, err)).
			Msg("error in main loop")
	}
	cleanup()
}

func loop(ctx context.Context, commands <-chan protocol.Command) error {
	errFactory := errors.New()
	if cfg.SampleRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, cfg.SampleRate)
	}

	samplePeriod := time.Second / time.Duration(cfg.SampleRate)
	sampleTicker := time.NewTicker(samplePeriod)
	defer sampleTicker.Stop()

	controlPeriod := time.Duration(cfg.ControlPeriodMS) * time.Millisecond
	controlTicker := time.NewTicker(controlPeriod)
	defer controlTicker.Stop()

	if cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging heart rate without actuating...")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sampleTicker.C:
			sample, err := sampler.Next()
			if err != nil {
				// A measurement fault is never fatal: the loop stays
				// up and keeps accepting commands.
				samplerFaults++
				logger.Debug().Err(err).Uint64("sampler_faults", samplerFaults).
					Msg("sample read failed")
				continue
			}
			pipeline.Process(sample)
		case cmd := <-commands:
			applyCommand(cmd)
		case <-controlTicker.C:
			controlTick(ctx, commands)
		}
	}
}

// controlTick runs one control cycle. Pending host commands drain
// first, so a queued STOP lands before any adjustment this cycle
// would make.
func controlTick(ctx context.Context, commands <-chan protocol.Command) {
	drainCommands(commands)

	estimate := pipeline.Current()
	if !cfg.Monitor {
		controller.Cycle(estimate, time.Now())
	}
	publish(ctx, estimate)
	logState(estimate)
}

func drainCommands(commands <-chan protocol.Command) {
	for {
		select {
		case cmd := <-commands:
			applyCommand(cmd)
		default:
			return
		}
	}
}

// applyCommand executes one host command. STOP acts immediately, ahead
// of the next control cycle.
func applyCommand(cmd protocol.Command) {
	switch cmd.Kind {
	case protocol.KindStop:
		if err := controller.EmergencyStop(); err != nil {
			logger.ErrorWithCode(errors.New().Wrap(errors.ErrStopMotor, err)).
				Msg("emergency stop: motor did not confirm")
		} else {
			logger.Info().Msg("emergency stop")
		}
	case protocol.KindTarget:
		if err := controller.SetTarget(cmd.Target); err != nil {
			logger.Error().Err(err).Int("target", cmd.Target).Msg("target rejected")
		}
	case protocol.KindSpeed:
		duty := int(math.Round(cmd.Speed))
		if _, err := controller.OverrideSpeed(duty); err != nil {
			logger.Error().Err(err).Int("duty", duty).Msg("speed override rejected")
		}
	case protocol.KindMode:
		if err := controller.SetMode(control.Mode(cmd.Mode)); err != nil {
			logger.Error().Err(err).Str("mode", cmd.Mode).Msg("mode rejected")
		}
	}
}

func publish(ctx context.Context, estimate ecg.Estimate) {
	if estimate.Valid {
		emitter.EmitBPM(estimate.BPM)
	}
	emitter.EmitSpeed(float64(actuator.Current()))

	if collector == nil {
		return
	}

	band, _ := controller.Band()
	snapshot := &telemetry.Snapshot{
		Timestamp: time.Now(),
		HeartRate: telemetry.HeartRateMetrics{
			Current:  estimate.BPM,
			Smoothed: controller.Smoothed(),
			Valid:    estimate.Valid,
		},
		Motor: telemetry.MotorMetrics{
			Duty:    actuator.Current(),
			Stopped: actuator.Stopped(),
		},
		SystemState: telemetry.StateMetrics{
			State:         string(controller.State()),
			TargetLow:     band.Low,
			TargetHigh:    band.High,
			SkippedCycles: controller.SkippedCycles(),
		},
	}
	if err := collector.Record(ctx, snapshot); err != nil {
		logger.Error().Err(err).Msg("failed to record telemetry")
	}
}

func logState(estimate ecg.Estimate) {
	if cfg.Debug {
		band, hasBand := controller.Band()
		logger.Debug().
			Int("bpm", estimate.BPM).
			Bool("bpm_valid", estimate.Valid).
			Float64("bpm_smoothed", controller.Smoothed()).
			Uint64("rejected_intervals", pipeline.Rejected()).
			Int("duty", actuator.Current()).
			Bool("motor_stopped", actuator.Stopped()).
			Str("state", string(controller.State())).
			Float64("band_low", band.Low).
			Float64("band_high", band.High).
			Bool("band_set", hasBand).
			Uint64("skipped_cycles", controller.SkippedCycles()).
			Uint64("sampler_faults", samplerFaults).
			Bool("monitor", cfg.Monitor).
			Msg("")
	} else if cfg.Verbose || cfg.Monitor {
		logger.Info().
			Int("bpm", estimate.BPM).
			Bool("bpm_valid", estimate.Valid).
			Int("duty", actuator.Current()).
			Str("state", string(controller.State())).
			Msg("")
	}
}

// serve accepts host connections one at a time and bridges them to the
// command channel and the telemetry emitter.
func serve(ctx context.Context, listener net.Listener, commands chan<- protocol.Command) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			logger.Error().Err(err).Msg("accept failed")
			continue
		}

		logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("host connected")
		handleConn(ctx, conn, commands)
		logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("host disconnected")
	}
}

func handleConn(ctx context.Context, conn net.Conn, commands chan<- protocol.Command) {
	defer conn.Close()

	emitter.SetWriter(conn)
	defer emitter.SetWriter(nil)

	decoder := protocol.NewDecoder(cfg.RecvBufferCap)
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			for _, cmd := range decoder.Feed(buf[:n]) {
				select {
				case commands <- cmd:
				case <-ctx.Done():
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup() {
	if err := actuator.EmergencyStop(); err != nil {
		logger.Error().Err(err).Msg("failed to stop motor")
	}
	if collector != nil {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}
	if err := pid.Remove(); err != nil {
		logger.Error().Err(err).Msg("failed to remove PID file")
	}
	logger.Info().Msg("Exiting...")
}
