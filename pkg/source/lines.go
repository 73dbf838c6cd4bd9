package source

import (
	"bytes"
	"os"
)

// LineCount returns the number of lines in the file at path. A final line
// without a trailing newline is counted.
func LineCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return CountLines(data), nil
}

// CountLines counts the lines in data the way LineCount does.
func CountLines(data []byte) int {
	n := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n
}
