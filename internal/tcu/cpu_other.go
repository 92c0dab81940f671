//go:build !linux

package tcu

func currentCPU() int { return 0 }
