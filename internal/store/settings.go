package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/recordlog"
)

// chaves internas (prefixo "_") guardam o próximo id de tipos que já foram compactados
const seqKeyPrefix = "_seq."

type settingsTable struct {
	log    recordlog.Log
	mu     sync.RWMutex
	values map[string]string
}

func (s *settingsTable) replay(ctx context.Context, logger *slog.Logger) error {
	lines, err := s.log.ReadAll(ctx, recordlog.Settings)
	if err != nil {
		return &StorageError{Op: "replay", Kind: recordlog.Settings, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, line := range lines {
		var st models.Setting
		if err := json.Unmarshal(line, &st); err != nil || st.Key == "" {
			logger.Warn("replay_skip_malformed", "kind", recordlog.Settings, "line", i+1, "err", err)
			continue
		}
		s.values[st.Key] = st.Value // última linha de cada chave vence
	}
	return nil
}

func (s *settingsTable) set(ctx context.Context, key, value string) error {
	line, err := json.Marshal(models.Setting{Key: key, Value: value})
	if err != nil {
		return &StorageError{Op: "encode", Kind: recordlog.Settings, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.log.Append(ctx, recordlog.Settings, line); err != nil {
		return &StorageError{Op: "append", Kind: recordlog.Settings, Err: err}
	}
	s.values[key] = value
	return nil
}

func (s *settingsTable) get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *settingsTable) compact(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([][]byte, 0, len(keys))
	for _, k := range keys {
		line, err := json.Marshal(models.Setting{Key: k, Value: s.values[k]})
		if err != nil {
			return 0, &StorageError{Op: "encode", Kind: recordlog.Settings, Err: err}
		}
		lines = append(lines, line)
	}
	if err := s.log.Rewrite(ctx, recordlog.Settings, lines); err != nil {
		return 0, &StorageError{Op: "rewrite", Kind: recordlog.Settings, Err: err}
	}
	return len(lines), nil
}

func (s *settingsTable) savedSeq(kind recordlog.Kind) int64 {
	v, ok := s.get(seqKeyPrefix + string(kind))
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *settingsTable) saveSeq(ctx context.Context, kind recordlog.Kind, next int64) error {
	if cur, ok := s.get(seqKeyPrefix + string(kind)); ok && cur == strconv.FormatInt(next, 10) {
		return nil
	}
	return s.set(ctx, seqKeyPrefix+string(kind), strconv.FormatInt(next, 10))
}

// GetSetting devolve o valor gravado para a chave.
func (s *Store) GetSetting(key string) (string, bool) {
	return s.settings.get(key)
}

// SetSetting faz upsert (última escrita vence); toda escrita vai para o log.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if key == "" || strings.HasPrefix(key, "_") {
		return ErrReservedKey
	}
	return s.settings.set(ctx, key, value)
}
