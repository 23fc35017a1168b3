//go:build !unix

package main

import "os"

var resetSignals []os.Signal
