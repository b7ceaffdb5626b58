package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BufferedFileWriter batches log lines through a channel so slow disk
// writes never block the pipeline. Lines are dropped when the buffer is
// full.
type BufferedFileWriter struct {
	writer  *bufio.Writer
	file    *os.File
	mu      sync.Mutex
	lines   chan []byte
	done    chan struct{}
	closeMu sync.Once
}

func NewBufferedFileWriter(path string, bufferSize int) (*BufferedFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	w := &BufferedFileWriter{
		writer: bufio.NewWriterSize(file, bufferSize),
		file:   file,
		lines:  make(chan []byte, 1000),
		done:   make(chan struct{}),
	}
	go w.drain()

	return w, nil
}

func (w *BufferedFileWriter) Write(p []byte) (int, error) {
	select {
	case w.lines <- append([]byte{}, p...):
		return len(p), nil
	default:
		return 0, nil
	}
}

func (w *BufferedFileWriter) drain() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case line := <-w.lines:
			w.mu.Lock()
			_, _ = w.writer.Write(line)
			w.mu.Unlock()

		case <-ticker.C:
			w.mu.Lock()
			_ = w.writer.Flush()
			w.mu.Unlock()

		case <-w.done:
			w.mu.Lock()
			_ = w.writer.Flush()
			w.mu.Unlock()
			return
		}
	}
}

func (w *BufferedFileWriter) Close() {
	w.closeMu.Do(func() {
		close(w.done)
		_ = w.file.Close()
	})
}
