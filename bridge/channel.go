package bridge

import (
	"fmt"
	"os"
)

// Channel is a best-effort hand-off with an external predictor process.
// Publish never waits for a consumer and Fetch never waits for fresh data;
// stale or missing data is the normal case, not an error to recover from.
type Channel interface {
	// Publish replaces the input record.
	Publish(record []byte) error
	// Fetch returns the latest result record, or an error if none is
	// readable right now.
	Fetch() ([]byte, error)
}

// FileChannel exchanges records through two well-known files, typically
// on a tmpfs such as /dev/shm. There is no locking or versioning.
type FileChannel struct {
	InputPath  string
	ResultPath string
}

// NewFileChannel creates a channel over the given paths.
func NewFileChannel(inputPath, resultPath string) *FileChannel {
	return &FileChannel{InputPath: inputPath, ResultPath: resultPath}
}

// Publish writes the input record for the predictor. The record goes to a
// sibling temp file and is renamed into place, so a failed write leaves
// the previous record intact.
func (c *FileChannel) Publish(record []byte) error {
	if err := replaceFile(c.InputPath, record); err != nil {
		return fmt.Errorf("publishing input record: %w", err)
	}
	return nil
}

// Fetch reads the latest result record.
func (c *FileChannel) Fetch() ([]byte, error) {
	data, err := os.ReadFile(c.ResultPath)
	if err != nil {
		return nil, fmt.Errorf("fetching result record: %w", err)
	}
	return data, nil
}

// TakeInput is the predictor side of Publish: it reads the input record
// and removes it so the same state is not answered twice.
func (c *FileChannel) TakeInput() ([]byte, error) {
	data, err := os.ReadFile(c.InputPath)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(c.InputPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing input record: %w", err)
	}
	return data, nil
}

// PutResult is the predictor side of Fetch. Like Publish it replaces the
// record atomically, so a reader never sees a partial frame.
func (c *FileChannel) PutResult(record []byte) error {
	if err := replaceFile(c.ResultPath, record); err != nil {
		return fmt.Errorf("writing result record: %w", err)
	}
	return nil
}

func replaceFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
