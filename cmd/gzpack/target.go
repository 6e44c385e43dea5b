package main

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const suffix = ".gz"

// compressTarget returns where compressing input should write to, or ""
// for stdout.
func compressTarget(input string, toStdout bool) string {
	if toStdout || input == "-" {
		return ""
	}
	return input + suffix
}

// decompressTarget returns where decompressing input should write to, or
// "" for stdout. A name stored in the gzip header wins over the input's
// own name; only its last element is used, so a header can't direct output
// into another directory.
func decompressTarget(input, stored string, toStdout bool) (string, error) {
	if toStdout {
		return "", nil
	}

	dir := "."
	if input != "-" {
		dir = filepath.Dir(input)
	}
	if stored != "" {
		base := filepath.Base(filepath.FromSlash(stored))
		if base != "." && base != ".." && base != string(filepath.Separator) {
			return filepath.Join(dir, base), nil
		}
	}

	if input == "-" {
		return "", nil
	}
	if !strings.HasSuffix(input, suffix) || len(input) == len(suffix) {
		return "", errors.Errorf("%s: unknown suffix, expected %s", input, suffix)
	}
	return strings.TrimSuffix(input, suffix), nil
}
