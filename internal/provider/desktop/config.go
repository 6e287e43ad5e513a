// Package desktop provides the desktop provider: dock pinning and font
// settings through the desktop-environment settings store.
//
// All mutations run as the invoking session user, never elevated; the
// settings store is per-session and writes under sudo would land in the
// wrong user's profile.
package desktop

import (
	"github.com/mvaldez/orinup/internal/domain/config"
)

// Default locations and schema IDs for a GNOME-class desktop.
const (
	DefaultApplicationsDir = "/usr/share/applications"
	DefaultAlacrittyConfig = "~/.config/alacritty/alacritty.toml"

	shellSchema       = "org.gnome.shell"
	favoritesKey      = "favorite-apps"
	interfaceSchema   = "org.gnome.desktop.interface"
	monospaceFontKey  = "monospace-font-name"
	defaultFontSizePt = 11.0
)

// Config represents the desktop section of the configuration.
type Config struct {
	// Pins lists .desktop entries to pin to the dock, in order.
	Pins []string
	// MonospaceFont is the font set for the desktop interface, e.g.
	// "DejaVu Sans Mono 11". Empty means leave the font alone.
	MonospaceFont string
	// AlacrittyFont, when set, is also written into the terminal
	// emulator's TOML config.
	AlacrittyFont string
	// AlacrittyFontSize applies with AlacrittyFont; zero keeps the default.
	AlacrittyFontSize float64
	// AlacrittyConfig overrides the terminal config path.
	AlacrittyConfig string
	// ApplicationsDir overrides where .desktop files are looked up.
	ApplicationsDir string
}

// ParseConfig parses the desktop configuration from a raw map.
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	cfg := &Config{
		Pins:            make([]string, 0),
		AlacrittyConfig: DefaultAlacrittyConfig,
		ApplicationsDir: DefaultApplicationsDir,
	}

	pins, err := config.StringsFromSection(raw, "pins")
	if err != nil {
		return nil, err
	}
	cfg.Pins = append(cfg.Pins, pins...)

	if cfg.MonospaceFont, err = config.StringFromSection(raw, "monospace_font", ""); err != nil {
		return nil, err
	}
	if cfg.AlacrittyFont, err = config.StringFromSection(raw, "alacritty_font", ""); err != nil {
		return nil, err
	}

	if size, ok := raw["alacritty_font_size"]; ok {
		switch v := size.(type) {
		case float64:
			cfg.AlacrittyFontSize = v
		case int:
			cfg.AlacrittyFontSize = float64(v)
		default:
			return nil, &config.UserError{
				Code:    config.ErrCodeSectionInvalid,
				Message: "'alacritty_font_size' must be a number",
				Context: "desktop.alacritty_font_size",
			}
		}
	}

	if cfg.AlacrittyConfig, err = config.StringFromSection(raw, "alacritty_config", DefaultAlacrittyConfig); err != nil {
		return nil, err
	}
	if cfg.ApplicationsDir, err = config.StringFromSection(raw, "applications_dir", DefaultApplicationsDir); err != nil {
		return nil, err
	}

	return cfg, nil
}
