package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/Werneck0live/cadastro-leads/internal/recordlog"
)

// table é o índice em memória de um tipo. Toda escrita no log acontece com
// o lock de escrita seguro, então a ordem do arquivo é a ordem lógica.
type table[T any] struct {
	kind   recordlog.Kind
	log    recordlog.Log
	id     func(T) int64
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64

	// saveSeq guarda o próximo id fora do stream antes de um rewrite,
	// para um id removido não voltar a ser emitido depois do restart.
	saveSeq func(ctx context.Context, kind recordlog.Kind, next int64) error
}

func newTable[T any](kind recordlog.Kind, log recordlog.Log, id func(T) int64) *table[T] {
	return &table[T]{kind: kind, log: log, id: id, rows: make(map[int64]T), nextID: 1}
}

// replay aplica as linhas na ordem do arquivo: a última versão de cada id vence.
func (t *table[T]) replay(ctx context.Context, logger *slog.Logger) error {
	lines, err := t.log.ReadAll(ctx, t.kind)
	if err != nil {
		return &StorageError{Op: "replay", Kind: t.kind, Err: err}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, line := range lines {
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("replay_skip_malformed", "kind", t.kind, "line", i+1, "err", err)
			continue
		}
		id := t.id(rec)
		if id <= 0 {
			logger.Warn("replay_skip_missing_id", "kind", t.kind, "line", i+1)
			continue
		}
		t.rows[id] = rec
		if id >= t.nextID {
			t.nextID = id + 1
		}
	}
	return nil
}

func (t *table[T]) append(ctx context.Context, rec T) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return &StorageError{Op: "encode", Kind: t.kind, Err: err}
	}
	if err := t.log.Append(ctx, t.kind, line); err != nil {
		return &StorageError{Op: "append", Kind: t.kind, Err: err}
	}
	return nil
}

// insert reserva o próximo id (mesmo se o append falhar, ids nunca são reutilizados),
// roda o check de unicidade sob o lock e só publica em memória depois do append.
func (t *table[T]) insert(ctx context.Context, unique func(existing T) error, build func(id int64) T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	if unique != nil {
		for _, row := range t.rows {
			if err := unique(row); err != nil {
				return zero, err
			}
		}
	}
	id := t.nextID
	t.nextID++
	rec := build(id)
	if err := t.append(ctx, rec); err != nil {
		return zero, err
	}
	t.rows[id] = rec
	return rec, nil
}

// mutate aplica fn numa cópia; erro de fn aborta sem tocar memória nem log.
func (t *table[T]) mutate(ctx context.Context, id int64, unique func(existing T) error, fn func(*T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	rec, ok := t.rows[id]
	if !ok {
		return zero, ErrNotFound
	}
	if err := fn(&rec); err != nil {
		return zero, err
	}
	if unique != nil {
		for otherID, row := range t.rows {
			if otherID == id {
				continue
			}
			if err := unique(row); err != nil {
				return zero, err
			}
		}
	}
	if err := t.append(ctx, rec); err != nil {
		return zero, err
	}
	t.rows[id] = rec
	return rec, nil
}

func (t *table[T]) get(id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return rec, nil
}

func (t *table[T]) find(match func(T) bool) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var (
		found T
		ok    bool
	)
	// menor id vence, independente da ordem do map
	for _, rec := range t.rows {
		if match(rec) && (!ok || t.id(rec) < t.id(found)) {
			found, ok = rec, true
		}
	}
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return found, nil
}

// list devolve em ordem de id (ordem de criação).
func (t *table[T]) list(match func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sortedLocked(match)
}

func (t *table[T]) sortedLocked(match func(T) bool) []T {
	out := make([]T, 0, len(t.rows))
	for _, rec := range t.rows {
		if match == nil || match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return t.id(out[i]) < t.id(out[j]) })
	return out
}

func (t *table[T]) rewriteLocked(ctx context.Context, lines [][]byte) error {
	if t.saveSeq != nil {
		if err := t.saveSeq(ctx, t.kind, t.nextID); err != nil {
			return err
		}
	}
	if err := t.log.Rewrite(ctx, t.kind, lines); err != nil {
		return &StorageError{Op: "rewrite", Kind: t.kind, Err: err}
	}
	return nil
}

func (t *table[T]) snapshotLines(skip int64) ([][]byte, error) {
	rows := t.sortedLocked(func(rec T) bool { return t.id(rec) != skip })
	lines := make([][]byte, 0, len(rows))
	for _, rec := range rows {
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, &StorageError{Op: "encode", Kind: t.kind, Err: err}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// remove compacta o log sem o registro antes de tirar da memória:
// se o rewrite falhar, memória e log continuam iguais.
func (t *table[T]) remove(ctx context.Context, id int64) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	rec, ok := t.rows[id]
	if !ok {
		return zero, ErrNotFound
	}
	lines, err := t.snapshotLines(id)
	if err != nil {
		return zero, err
	}
	if err := t.rewriteLocked(ctx, lines); err != nil {
		return zero, err
	}
	delete(t.rows, id)
	return rec, nil
}

func (t *table[T]) clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.rewriteLocked(ctx, nil); err != nil {
		return err
	}
	t.rows = make(map[int64]T)
	return nil
}

// compact reescreve o log só com a versão atual de cada registro.
func (t *table[T]) compact(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines, err := t.snapshotLines(0)
	if err != nil {
		return 0, err
	}
	if err := t.rewriteLocked(ctx, lines); err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (t *table[T]) bumpNextID(next int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if next > t.nextID {
		t.nextID = next
	}
}

func (t *table[T]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *table[T]) setSaveSeq(fn func(context.Context, recordlog.Kind, int64) error) {
	t.mu.Lock()
	t.saveSeq = fn
	t.mu.Unlock()
}
