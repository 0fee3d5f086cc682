// Package playerconfig generates the player application's configuration
// file. The document is a flat mapping of sections (backend connection,
// GPIO pins, display assets and fonts, hardware address, logging);
// user-home-relative paths are written with the {USER} placeholder and
// resolved against the install user at generation time.
package playerconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quadify/quadify-setup/pkg/profile"
	"github.com/quadify/quadify-setup/pkg/sysops"
)

// Document is the player configuration written to the install tree.
type Document struct {
	MPD     MPD             `yaml:"mpd"`
	GPIO    GPIO            `yaml:"gpio"`
	Display Display         `yaml:"display"`
	Fonts   map[string]Font `yaml:"fonts"`
	MCPAddr string          `yaml:"mcp23017_address,omitempty"`
	Logging Logging         `yaml:"logging"`
}

// MPD is the backend connection.
type MPD struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Timeout int    `yaml:"timeout"`
}

// GPIO holds the rotary encoder pin numbers (BCM numbering).
type GPIO struct {
	ClkPin int `yaml:"clk_pin"`
	DtPin  int `yaml:"dt_pin"`
	SwPin  int `yaml:"sw_pin"`
}

// Display locates the renderer's assets.
type Display struct {
	IconDir        string `yaml:"icon_dir"`
	LogoPath       string `yaml:"logo_path"`
	LoadingGifPath string `yaml:"loading_gif_path"`
}

// Font is one font definition for the display renderer.
type Font struct {
	Path string `yaml:"path"`
	Size int    `yaml:"size"`
}

// Logging configures the player's own logger.
type Logging struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Build assembles the document for a profile. The detected expander
// address (a "0x"-prefixed hex literal) may be empty when no hardware
// was found; the section is then omitted and the player falls back to
// its own default.
func Build(p *profile.Profile, mcpAddr string) *Document {
	home := "/home/" + sysops.UserPlaceholder
	assets := home + "/Quadify/src/assets"
	return &Document{
		MPD: MPD{
			Host:    p.MPD.Host,
			Port:    p.MPD.Port,
			Timeout: p.MPD.Timeout,
		},
		GPIO: GPIO{
			ClkPin: 13,
			DtPin:  5,
			SwPin:  6,
		},
		Display: Display{
			IconDir:        assets + "/images",
			LogoPath:       assets + "/images/logo.bmp",
			LoadingGifPath: assets + "/images/loading.gif",
		},
		Fonts: map[string]Font{
			"default": {Path: assets + "/fonts/OpenSans-Regular.ttf", Size: 12},
			"bold":    {Path: assets + "/fonts/OpenSans-Bold.ttf", Size: 14},
			"clock":   {Path: assets + "/fonts/DSEG7Classic-Bold.ttf", Size: 32},
		},
		MCPAddr: mcpAddr,
		Logging: Logging{
			Level:  "INFO",
			File:   home + "/Quadify/quadify.log",
			Format: "%(asctime)s - %(name)s - %(levelname)s - %(message)s",
		},
	}
}

// Render marshals the document, resolving the {USER} placeholder against
// the install user.
func Render(doc *Document, user string) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player config: %w", err)
	}
	return []byte(strings.ReplaceAll(string(data), sysops.UserPlaceholder, user)), nil
}

// WriteOnce renders the document to path unless the file already exists.
// An existing configuration belongs to the operator and is never
// overwritten by a re-run.
func WriteOnce(path string, doc *Document, user string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := Render(doc, user)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
