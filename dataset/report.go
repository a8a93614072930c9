package dataset

import (
	"fmt"
	"os"
	"time"
)

// Report appends a timestamped line to the report artifact at path and
// returns the line written. The file's presence signals that a generator
// hit a fatal condition.
func Report(path, msg string) (string, error) {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return line, fmt.Errorf("opening report file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return line, fmt.Errorf("writing report file: %w", err)
	}
	return line, nil
}
