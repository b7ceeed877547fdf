package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bitbotScope/internal/model"
)

// JsonlExporter writes a snapshot of bitbot records to a JSONL file.
type JsonlExporter struct {
	path string
	mu   sync.Mutex
}

func NewJsonlExporter(path string) *JsonlExporter {
	return &JsonlExporter{path: path}
}

// Export replaces the file contents with one JSON line per record.
func (e *JsonlExporter) Export(bots []model.Bitbot) error {
	dir := filepath.Dir(e.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, bot := range bots {
		line, err := json.Marshal(bot)
		if err != nil {
			return fmt.Errorf("marshal bitbot: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write bitbot: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
