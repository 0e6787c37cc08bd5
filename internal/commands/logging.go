package commands

import (
	"strings"

	"github.com/goliatone/go-mapsync/internal/logging"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
)

const commandModuleRoot = "mapsync.commands"

// CommandLogger returns a module-scoped logger for command handlers so
// command executions emit consistent structured fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
