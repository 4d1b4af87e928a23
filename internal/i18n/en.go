package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Status fields
	"uptime.format": "%dd %dh %dm",

	// TUI tabs
	"tab.status":    "Status",
	"tab.tasks":     "Tasks",
	"tab.processes": "Processes",
	"tab.skills":    "Skills",

	// TUI labels
	"label.agent":       "Agent",
	"label.version":     "Version",
	"label.uptime":      "Uptime",
	"label.current":     "Current task",
	"label.memory":      "Memory",
	"label.tasks":       "Tasks",
	"label.completed":   "%d of %d done",
	"label.none":        "none",
	"label.source":      "source: %s",
	"label.refreshed":   "refreshed %s",
	"label.empty":       "Nothing here yet",
	"label.skill_type":  "%s skill",
	"label.loading":     "Loading...",
	"label.no_manifest": "SKILL.md not found",

	// TUI help
	"help.keys": "tab/shift+tab switch · ↑/↓ select · enter open · r refresh · esc back · q quit",
}
