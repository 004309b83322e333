package utils

import (
	"bufio"
	"os"
	"strings"
)

func ReadLines(fname string) ([]string, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// WriteLines replaces fname with lines, newline terminated.
func WriteLines(fname string, lines []string) error {
	return os.WriteFile(fname, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
