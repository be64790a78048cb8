package main

import (
	"os"
	"strings"
)

// configPath finds -config before flag parsing so the file can supply the
// defaults that the remaining flags override.
func configPath(fallback string) string {
	args := os.Args[1:]
	for i, a := range args {
		a = strings.TrimLeft(a, "-")
		if v, ok := strings.CutPrefix(a, "config="); ok {
			return v
		}
		if a == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}
