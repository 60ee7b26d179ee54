//go:build unix

package infrastructure

import "golang.org/x/sys/unix"

func cpuUsage() CPUUsage {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return CPUUsage{}
	}
	return CPUUsage{
		User:   ru.Utime.Nano() / 1000,
		System: ru.Stime.Nano() / 1000,
	}
}
