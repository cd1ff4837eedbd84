package pluginruntime

import (
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newPluginLog opens a rotating log file for one plugin's console.* output,
// keyed by the plugin's stable UUID so reinstalling under a new PluginID
// doesn't orphan old logs.
func newPluginLog(dataDir, pluginUUID string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dataDir, "logs", pluginUUID+".log"),
		MaxSize:    5,
		MaxBackups: 2,
		MaxAge:     14,
		Compress:   true,
	}
}
