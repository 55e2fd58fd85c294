//go:build !(linux || darwin || freebsd || openbsd || netbsd)

package main

import (
	"os"

	"github.com/abrezinsky/revista/internal/logger"
)

// listenForKeyboard reads keys without raw mode; on these platforms each key needs Enter
func listenForKeyboard(adminURL string, appLog *logger.SlogLogger) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		if handleKey(buf[0], adminURL, appLog) {
			os.Exit(0)
		}
	}
}
