package config

import (
	"strings"

	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultSampleRate      = 250
	defaultBaselineAlpha   = 0.995
	defaultEnvelopeAlpha   = 0.3
	defaultThresholdAlpha  = 0.01
	defaultThresholdGain   = 1.5
	defaultRefractoryMS    = 250
	defaultRRWindow        = 5
	defaultBPMMin          = 40
	defaultBPMMax          = 200
	defaultControlPeriodMS = 1000
	defaultKp              = 3.5
	defaultDeadband        = 1.5
	defaultHRSmoothing     = 0.6
	defaultDutyMin         = 70
	defaultDutyMax         = 255
	defaultRecvBufferCap   = 500
	defaultListenAddr      = ":7070"
)

// Config holds every tunable of the acquisition pipeline, the band
// controller and the daemon surfaces. Values come from defaults, the
// zxisrun.toml config file, ZXISRUN_* environment variables and flags,
// in increasing order of precedence.
type Config struct {
	// Acquisition and beat detection
	SampleRate     int     `mapstructure:"sample_rate"`
	BaselineAlpha  float64 `mapstructure:"baseline_alpha"`
	EnvelopeAlpha  float64 `mapstructure:"envelope_alpha"`
	ThresholdAlpha float64 `mapstructure:"threshold_alpha"`
	ThresholdGain  float64 `mapstructure:"threshold_gain"`
	RefractoryMS   int     `mapstructure:"refractory_ms"`

	// Rate estimation
	RRWindow int `mapstructure:"rr_window"`
	BPMMin   int `mapstructure:"bpm_min"`
	BPMMax   int `mapstructure:"bpm_max"`

	// Band control
	ControlPeriodMS int     `mapstructure:"control_period_ms"`
	Kp              float64 `mapstructure:"kp"`
	Deadband        float64 `mapstructure:"deadband"`
	HRSmoothing     float64 `mapstructure:"hr_smoothing"`

	// Motor
	DutyMin int `mapstructure:"duty_min"`
	DutyMax int `mapstructure:"duty_max"`

	// Protocol
	RecvBufferCap int    `mapstructure:"recv_buffer_cap"`
	ListenAddr    string `mapstructure:"listen"`

	// Daemon behaviour
	Simulate    bool   `mapstructure:"simulate"`
	SimulateBPM int    `mapstructure:"simulate_bpm"`
	Monitor     bool   `mapstructure:"monitor"`
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`
	LogLevel    string `mapstructure:"log_level"`
	Debug       bool   `mapstructure:"debug"`
	Verbose     bool   `mapstructure:"verbose"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sample_rate", defaultSampleRate)
	v.SetDefault("baseline_alpha", defaultBaselineAlpha)
	v.SetDefault("envelope_alpha", defaultEnvelopeAlpha)
	v.SetDefault("threshold_alpha", defaultThresholdAlpha)
	v.SetDefault("threshold_gain", defaultThresholdGain)
	v.SetDefault("refractory_ms", defaultRefractoryMS)
	v.SetDefault("rr_window", defaultRRWindow)
	v.SetDefault("bpm_min", defaultBPMMin)
	v.SetDefault("bpm_max", defaultBPMMax)
	v.SetDefault("control_period_ms", defaultControlPeriodMS)
	v.SetDefault("kp", defaultKp)
	v.SetDefault("deadband", defaultDeadband)
	v.SetDefault("hr_smoothing", defaultHRSmoothing)
	v.SetDefault("duty_min", defaultDutyMin)
	v.SetDefault("duty_max", defaultDutyMax)
	v.SetDefault("recv_buffer_cap", defaultRecvBufferCap)
	v.SetDefault("listen", defaultListenAddr)
	v.SetDefault("simulate", false)
	v.SetDefault("simulate_bpm", 72)
	v.SetDefault("monitor", false)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "/var/lib/zxisrun/telemetry.db")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("zxisrun", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Int("sample-rate", defaultSampleRate, "ECG sampling rate in Hz")
	flags.Int("control-period-ms", defaultControlPeriodMS, "Control cycle period in milliseconds")
	flags.String("listen", defaultListenAddr, "Address for the host protocol listener")
	flags.Bool("simulate", false, "Run against the synthetic ECG source and motor")
	flags.Int("simulate-bpm", 72, "Heart rate of the synthetic ECG source")
	flags.Bool("monitor", false, "Only estimate and log, never drive the motor")
	flags.Bool("telemetry", false, "Enable telemetry collection")
	flags.String("database", "", "Path to the telemetry database")
	flags.String("log-level", "", "Log level (debug, info, warning, error)")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	if err := flags.Parse(argsFrom()); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bind := map[string]string{
		"sample-rate":       "sample_rate",
		"control-period-ms": "control_period_ms",
		"listen":            "listen",
		"simulate":          "simulate",
		"simulate-bpm":      "simulate_bpm",
		"monitor":           "monitor",
		"telemetry":         "telemetry",
		"database":          "database",
		"log-level":         "log_level",
		"debug":             "debug",
		"verbose":           "verbose",
	}
	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := bind[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("ZXISRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper) error {
	errFactory := errors.New()

	if path := envConfigPath(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
		}
		return nil
	}

	v.SetConfigName("zxisrun")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
		}
	}

	return nil
}

// Validate checks the loaded configuration for values the pipeline
// cannot run with.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.SampleRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "sample_rate must be positive")
	}
	if c.ControlPeriodMS <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.ControlPeriodMS)
	}
	if c.RefractoryMS <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "refractory_ms must be positive")
	}
	if c.RRWindow <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "rr_window must be positive")
	}
	if c.BPMMin <= 0 || c.BPMMax <= c.BPMMin {
		return errFactory.WithData(errors.ErrInvalidConfig, "bpm range is inverted or empty")
	}
	if c.DutyMin < 0 || c.DutyMax <= c.DutyMin {
		return errFactory.WithData(errors.ErrInvalidConfig, "duty range is inverted or empty")
	}
	for _, alpha := range []float64{c.BaselineAlpha, c.EnvelopeAlpha, c.ThresholdAlpha, c.HRSmoothing} {
		if alpha < 0 || alpha >= 1 {
			return errFactory.WithData(errors.ErrInvalidConfig, "EMA coefficients must be in [0,1)")
		}
	}
	if c.RecvBufferCap <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "recv_buffer_cap must be positive")
	}
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
