package recordlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileLog mantém um arquivo JSON-lines por Kind (data/users.txt, data/leads.txt, ...),
// o mesmo layout dos arquivos gerados pela versão anterior do sistema.
type FileLog struct {
	dir string

	mu    sync.Mutex
	locks map[Kind]*sync.Mutex
}

func NewFileLog(dir string) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("recordlog: create data dir: %w", err)
	}
	return &FileLog{dir: dir, locks: make(map[Kind]*sync.Mutex)}, nil
}

func (l *FileLog) Dir() string { return l.dir }

func (l *FileLog) path(kind Kind) string {
	return filepath.Join(l.dir, string(kind)+".txt")
}

func (l *FileLog) lock(kind Kind) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[kind]
	if !ok {
		m = &sync.Mutex{}
		l.locks[kind] = m
	}
	return m
}

func (l *FileLog) Append(_ context.Context, kind Kind, line []byte) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if bytes.ContainsRune(line, '\n') {
		return fmt.Errorf("recordlog: %s: line contains newline", kind)
	}
	m := l.lock(kind)
	m.Lock()
	defer m.Unlock()

	f, err := os.OpenFile(l.path(kind), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("recordlog: open %s: %w", kind, err)
	}
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("recordlog: append %s: %w", kind, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("recordlog: sync %s: %w", kind, err)
	}
	return f.Close()
}

// Rewrite escreve num arquivo temporário e faz rename, então um crash no meio
// deixa o arquivo antigo ou o novo, nunca metade de cada.
func (l *FileLog) Rewrite(_ context.Context, kind Kind, lines [][]byte) error {
	if err := validKind(kind); err != nil {
		return err
	}
	m := l.lock(kind)
	m.Lock()
	defer m.Unlock()

	tmp, err := os.CreateTemp(l.dir, string(kind)+".*.tmp")
	if err != nil {
		return fmt.Errorf("recordlog: rewrite %s: %w", kind, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	var buf bytes.Buffer
	for _, line := range lines {
		if bytes.ContainsRune(line, '\n') {
			cleanup()
			return fmt.Errorf("recordlog: %s: line contains newline", kind)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		cleanup()
		return fmt.Errorf("recordlog: rewrite %s: %w", kind, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("recordlog: rewrite %s: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("recordlog: rewrite %s: %w", kind, err)
	}
	if err := os.Rename(tmpName, l.path(kind)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("recordlog: rewrite %s: %w", kind, err)
	}
	return nil
}

func (l *FileLog) ReadAll(_ context.Context, kind Kind) ([][]byte, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	m := l.lock(kind)
	m.Lock()
	defer m.Unlock()

	data, err := os.ReadFile(l.path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("recordlog: read %s: %w", kind, err)
	}
	var out [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func (l *FileLog) Close() error { return nil }
