//go:build linux
// +build linux

package entrylog

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential hints the kernel that the file will be scanned front to
// back, which helps the recovery scanner on large segments.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
