package desktop

import (
	"fmt"
	"strings"
)

// parseAppList parses a gsettings array-of-strings value, e.g.
// "['firefox.desktop', 'org.gnome.Nautilus.desktop']".
func parseAppList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "@as []")
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")

	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	apps := make([]string, 0, len(parts))
	for _, part := range parts {
		app := strings.Trim(strings.TrimSpace(part), "'\"")
		if app != "" {
			apps = append(apps, app)
		}
	}
	return apps
}

// formatAppList renders a list in the form gsettings set expects.
func formatAppList(apps []string) string {
	quoted := make([]string, 0, len(apps))
	for _, app := range apps {
		quoted = append(quoted, fmt.Sprintf("'%s'", app))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// containsApp reports whether the entry is already in the list.
func containsApp(apps []string, entry string) bool {
	for _, app := range apps {
		if app == entry {
			return true
		}
	}
	return false
}
