//go:build !unix

package infrastructure

func cpuUsage() CPUUsage {
	return CPUUsage{}
}
