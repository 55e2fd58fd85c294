package main

import (
	"fmt"

	"github.com/abrezinsky/revista/internal/logger"
)

// handleKey runs the shortcut bound to key and reports whether the server should quit
func handleKey(key byte, adminURL string, appLog *logger.SlogLogger) bool {
	switch key {
	case 'a', 'A':
		openDashboard(adminURL)
	case 'h', 'H':
		toggleHTTPLogging(appLog)
	case 'l', 'L':
		cycleLogLevel(appLog)
	case '?':
		printKeyboardHelp()
	case 'q', 'Q', 0x03: // 0x03 is Ctrl+C in raw mode
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
		return true
	}
	return false
}
