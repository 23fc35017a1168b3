//go:build unix

package main

import (
	"os"
	"syscall"
)

var resetSignals = []os.Signal{syscall.SIGUSR1}
