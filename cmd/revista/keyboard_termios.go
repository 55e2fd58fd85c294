//go:build linux || darwin || freebsd || openbsd || netbsd

package main

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/abrezinsky/revista/internal/logger"
)

// listenForKeyboard puts the terminal in raw mode and dispatches single key presses
func listenForKeyboard(adminURL string, appLog *logger.SlogLogger) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		// Not a terminal
		return
	}

	newState := *oldState
	// Disable line buffering and echo but keep output processing so \n still works
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return
	}
	restore := func() { unix.IoctlSetTermios(fd, ioctlSetTermios, oldState) }
	defer restore()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		if handleKey(buf[0], adminURL, appLog) {
			restore()
			os.Exit(0)
		}
	}
}
