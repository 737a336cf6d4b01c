// Package fileread implements the trivial line reader behind
// /fs/get-file-contents/: read a file, strip ANSI escape sequences, split
// into lines. Out of the core scan/discovery/fan-out scope, but still an
// ambient concern the HTTP surface needs a home for.
package fileread

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
)

// ansiEscape matches CSI-style ANSI escape sequences (ESC '[' ... final byte),
// the common case for colorized log/build output.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// Lines reads path and returns its content split into lines with any ANSI
// escape sequences stripped. A read failure is returned as (nil, err); the
// HTTP layer turns that into {lines:[], error:<msg>}.
func Lines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, Strip(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// Strip removes ANSI escape sequences from a single line.
func Strip(line string) string {
	return ansiEscape.ReplaceAllString(line, "")
}
