// Package profile defines the install profile: every host path, package
// manifest, and feature switch the pipeline consumes. The upstream
// installer shipped six near-identical script variants differing only in
// these values; here the variance is data on one struct, loadable from
// YAML and validated before a run starts.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Profile parameterizes one provisioning run.
type Profile struct {
	// User is the account owning the install tree and running the
	// service. Defaults to $SUDO_USER, falling back to "volumio".
	User string `yaml:"user" validate:"required"`

	// InstallRoot is the root of the player's install tree.
	InstallRoot string `yaml:"install_root" validate:"required"`

	// ServiceName is the systemd unit name.
	ServiceName string `yaml:"service_name" validate:"required,endswith=.service"`

	// UnitTemplate is the unit template carrying the {USER} placeholder.
	UnitTemplate string `yaml:"unit_template" validate:"required"`

	// UnitDir is the system service directory.
	UnitDir string `yaml:"unit_dir" validate:"required"`

	// Packages is the apt manifest for the player itself.
	Packages []string `yaml:"packages" validate:"required,min=1"`

	// BuildPackages are the extra apt packages needed to compile CAVA.
	BuildPackages []string `yaml:"build_packages"`

	// BootConfig is the firmware configuration file.
	BootConfig string `yaml:"boot_config" validate:"required"`

	// I2CBus is the bus number probed for the GPIO expander.
	I2CBus int `yaml:"i2c_bus" validate:"gte=0"`

	// I2CDevice is the device node expected after module load.
	I2CDevice string `yaml:"i2c_device" validate:"required"`

	// MPDConf is the media player daemon configuration.
	MPDConf string `yaml:"mpd_conf" validate:"required"`

	// SambaConf is the file-sharing service configuration.
	SambaConf string `yaml:"samba_conf" validate:"required"`

	// CavaRepo and CavaDir locate the spectrum visualizer source.
	CavaRepo string `yaml:"cava_repo" validate:"required,url"`
	CavaDir  string `yaml:"cava_dir" validate:"required"`

	// LogPath is the install transcript location.
	LogPath string `yaml:"log_path" validate:"required"`

	// StateDB is the run-history SQLite database.
	StateDB string `yaml:"state_db" validate:"required"`

	// MetricsTextfile, when set, receives the final metric snapshot for
	// a node-exporter textfile collector.
	MetricsTextfile string `yaml:"metrics_textfile"`

	// MPD is the backend connection written into the player config.
	MPD MPDConfig `yaml:"mpd"`
}

// MPDConfig is the media player daemon connection.
type MPDConfig struct {
	Host    string `yaml:"host" validate:"required"`
	Port    int    `yaml:"port" validate:"required,gt=0,lte=65535"`
	Timeout int    `yaml:"timeout" validate:"gt=0"`
}

// Default returns the profile for a stock Quadify install. The {USER}
// placeholder in paths is resolved against the detected install user.
func Default() *Profile {
	user := detectUser()
	return &Profile{
		User:         user,
		InstallRoot:  filepath.Join("/home", user, "Quadify"),
		ServiceName:  "quadify.service",
		UnitTemplate: filepath.Join("/home", user, "Quadify", "service", "quadify.service.tmpl"),
		UnitDir:      "/etc/systemd/system",
		Packages: []string{
			"python3", "python3-venv", "python3-dev", "python3-pip",
			"i2c-tools", "python3-smbus", "libgirepository1.0-dev",
			"libcairo2-dev", "libffi-dev", "build-essential",
			"libjpeg-dev", "zlib1g-dev", "libfreetype6-dev", "mpc", "mpd",
		},
		BuildPackages: []string{
			"libfftw3-dev", "libasound2-dev", "libncursesw5-dev",
			"libpulse-dev", "libtool", "automake", "autoconf-archive",
			"libiniparser-dev", "pkg-config",
		},
		BootConfig: "/boot/config.txt",
		I2CBus:     1,
		I2CDevice:  "/dev/i2c-1",
		MPDConf:    "/etc/mpd.conf",
		SambaConf:  "/etc/samba/smb.conf",
		CavaRepo:   "https://github.com/karlstav/cava",
		CavaDir:    filepath.Join("/home", user, "cava"),
		LogPath:    "/var/log/quadify/install.log",
		StateDB:    "/var/lib/quadify/state.db",
		MPD: MPDConfig{
			Host:    "localhost",
			Port:    6600,
			Timeout: 5,
		},
	}
}

// Load reads a profile override from a YAML file, merged over defaults.
func Load(path string) (*Profile, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the profile's structural constraints.
func (p *Profile) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}
	return nil
}

// RequirementsPath is the Python manifest inside the install tree.
func (p *Profile) RequirementsPath() string {
	return filepath.Join(p.InstallRoot, "requirements.txt")
}

// ButtonsLEDsFile is the downstream source file carrying the expander
// address constant.
func (p *Profile) ButtonsLEDsFile() string {
	return filepath.Join(p.InstallRoot, "src", "hardware", "buttonsleds.py")
}

// EntryPointFile is the player entry point carrying the two feature
// marker lines.
func (p *Profile) EntryPointFile() string {
	return filepath.Join(p.InstallRoot, "src", "main.py")
}

// PlayerConfigPath is the generated player configuration.
func (p *Profile) PlayerConfigPath() string {
	return filepath.Join(p.InstallRoot, "config.yaml")
}

// UnitPath is the installed unit location.
func (p *Profile) UnitPath() string {
	return filepath.Join(p.UnitDir, p.ServiceName)
}

// detectUser resolves the install user: the account that invoked sudo,
// not root itself.
func detectUser() string {
	if u := os.Getenv("SUDO_USER"); u != "" && u != "root" {
		return u
	}
	return "volumio"
}
