package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// readInputArg reads the named file, or stdin when no file or "-" is given.
func readInputArg(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

// printBlock writes value followed by exactly one newline. Blank values
// print nothing.
func printBlock(w io.Writer, value string) {
	value = strings.TrimRight(value, "\n")
	if value == "" {
		return
	}
	fmt.Fprintln(w, value)
}
