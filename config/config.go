package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gopkg.in/yaml.v2"
)

// ClockSource selects what drives the engine.
type ClockSource string

const (
	ClockInternal ClockSource = "internal"
	ClockExternal ClockSource = "external"
)

// InputConfig defines the MIDI inputs that feed held notes, parameter CCs
// and, for an external clock, timing messages.
type InputConfig struct {
	Match   []string `json:"match,omitempty" yaml:"match,omitempty"` // port name substrings
	Channel int      `json:"channel" yaml:"channel"`                 // 1-16, 0 = omni
}

// OutputConfig defines the MIDI output and the channels each part plays on.
type OutputConfig struct {
	PortName      string `json:"portName,omitempty" yaml:"portName,omitempty"`
	ArpChannel    int    `json:"arpChannel" yaml:"arpChannel"`       // 1-16
	PitchChannel  int    `json:"pitchChannel" yaml:"pitchChannel"`   // 1-16
	PhraseChannel int    `json:"phraseChannel" yaml:"phraseChannel"` // 1-16
	ParamChannel  int    `json:"paramChannel" yaml:"paramChannel"`   // Machinedrum base channel, 1-16
}

// ArpConfig holds the arpeggiator settings applied at startup.
type ArpConfig struct {
	Style       string `json:"style" yaml:"style"`
	Speed       int    `json:"speed" yaml:"speed"`
	Octaves     int    `json:"octaves" yaml:"octaves"`
	Times       int    `json:"times" yaml:"times"`
	Retrigger   string `json:"retrigger" yaml:"retrigger"`
	RetrigSpeed int    `json:"retrigSpeed" yaml:"retrigSpeed"`
	Velocity    int    `json:"velocity,omitempty" yaml:"velocity,omitempty"`
}

// EuclidConfig holds the pitch sequencer settings applied at startup.
type EuclidConfig struct {
	Pulses      int  `json:"pulses" yaml:"pulses"`
	Steps       int  `json:"steps" yaml:"steps"`
	Rotation    int  `json:"rotation" yaml:"rotation"`
	Scale       int  `json:"scale" yaml:"scale"`
	Octaves     int  `json:"octaves" yaml:"octaves"`
	PitchLength int  `json:"pitchLength" yaml:"pitchLength"`
	NoteLength  int  `json:"noteLength" yaml:"noteLength"`
	BasePitch   int  `json:"basePitch" yaml:"basePitch"`
	Muted       bool `json:"muted,omitempty" yaml:"muted,omitempty"`
}

// RandomizerConfig holds the randomizer settings.
type RandomizerConfig struct {
	Track     int    `json:"track" yaml:"track"`
	Amount    int    `json:"amount" yaml:"amount"`
	Select    string `json:"select" yaml:"select"`
	UndoDepth int    `json:"undoDepth" yaml:"undoDepth"`
}

// Config is the main configuration structure
type Config struct {
	Tempo      int              `json:"tempo" yaml:"tempo"`
	Clock      ClockSource      `json:"clock" yaml:"clock"`
	Input      InputConfig      `json:"input" yaml:"input"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	Arp        ArpConfig        `json:"arp" yaml:"arp"`
	Euclid     EuclidConfig     `json:"euclid" yaml:"euclid"`
	Randomizer RandomizerConfig `json:"randomizer" yaml:"randomizer"`
	Listen     string           `json:"listen,omitempty" yaml:"listen,omitempty"` // HTTP API address
	Seed       int64            `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo: 120,
		Clock: ClockInternal,
		Output: OutputConfig{
			ArpChannel:    1,
			PitchChannel:  2,
			PhraseChannel: 3,
			ParamChannel:  1,
		},
		Arp: ArpConfig{
			Style:       "UP",
			Speed:       1,
			Times:       1,
			Retrigger:   "NOTE",
			RetrigSpeed: 4,
		},
		Euclid: EuclidConfig{
			Pulses:      3,
			Steps:       8,
			PitchLength: 4,
			NoteLength:  1,
			BasePitch:   48,
		},
		Randomizer: RandomizerConfig{
			Amount:    16,
			Select:    "ALL",
			UndoDepth: 1,
		},
		Listen: "127.0.0.1:8090",
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("locate home directory"))
	}
	return filepath.Join(home, ".config", "go-arp"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a JSON or YAML (.yaml/.yml) config. Missing fields keep
// their defaults; a missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fault.Wrap(err, fmsg.With("read config "+path))
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("parse config "+path, "The config file at "+path+" is not valid."))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fault.Wrap(err, fmsg.With("config "+path))
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as JSON or YAML depending on the extension.
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config directory"))
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode config"))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.With("write config "+path))
	}
	return nil
}

// Validate rejects settings that no component could honor. Out-of-range
// musical values are clamped by the components themselves.
func (c *Config) Validate() error {
	switch c.Clock {
	case ClockInternal, ClockExternal:
	default:
		return fault.New("unknown clock source " + string(c.Clock))
	}
	for _, ch := range []int{c.Output.ArpChannel, c.Output.PitchChannel, c.Output.PhraseChannel, c.Output.ParamChannel} {
		if ch < 1 || ch > 16 {
			return fault.New("output channels must be 1-16")
		}
	}
	if c.Input.Channel < 0 || c.Input.Channel > 16 {
		return fault.New("input channel must be 0-16")
	}
	return nil
}

// MIDIChannel converts a 1-16 channel to the 0-15 wire value.
func MIDIChannel(ch int) uint8 {
	if ch < 1 {
		return 0
	}
	return uint8(ch-1) & 0x0F
}

// InputChannel returns the 0-15 input channel, or -1 for omni.
func (c *Config) InputChannel() int {
	if c.Input.Channel == 0 {
		return -1
	}
	return c.Input.Channel - 1
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
