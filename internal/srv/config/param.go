package config

import (
	_ "embed"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type PlayerParam struct {
	LibraryFolder string        `yaml:"library_folder"`
	RandomStart   bool          `yaml:"random_start"`
	DebounceMs    int64         `yaml:"debounce_ms"`
	ButtonsParam  ButtonsParam  `yaml:"buttons"`
	DisplayParam  DisplayParam  `yaml:"display"`
}

// ButtonsParam maps the four logical buttons to GPIO line names. The
// defaults follow the Pirate Audio HAT layout (A, B, X, Y).
type ButtonsParam struct {
	PlayPausePin  string `yaml:"play_pause_pin"`
	NextPin       string `yaml:"next_pin"`
	VolumeDownPin string `yaml:"volume_down_pin"`
	VolumeUpPin   string `yaml:"volume_up_pin"`
}

type DisplayParam struct {
	SpiPort      string `yaml:"spi_port"`
	SpiHz        int64  `yaml:"spi_hz"`
	DcPin        string `yaml:"dc_pin"`
	BacklightPin string `yaml:"backlight_pin"`
	ResetPin     string `yaml:"reset_pin"`
	Rotation     int    `yaml:"rotation"`
}
