//go:build !linux
// +build !linux

package entrylog

import "os"

func adviseSequential(*os.File) {}
