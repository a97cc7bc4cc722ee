//go:build !linux

package cmd

func isTerminal(uintptr) bool { return true }
