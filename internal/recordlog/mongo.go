package recordlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLog guarda cada Kind numa coleção "log_<kind>"; a ordem é dada por "seq",
// atribuído aqui em sequência por Kind.
type MongoLog struct {
	db *mongo.Database

	mu    sync.Mutex
	locks map[Kind]*sync.Mutex
	seq   map[Kind]int64 // último seq gravado; ausente = ainda não carregado
}

type logEntry struct {
	Seq       int64     `bson:"seq"`
	Line      string    `bson:"line"`
	WrittenAt time.Time `bson:"written_at"`
}

func NewMongoLog(db *mongo.Database) *MongoLog {
	return &MongoLog{
		db:    db,
		locks: make(map[Kind]*sync.Mutex),
		seq:   make(map[Kind]int64),
	}
}

func (l *MongoLog) coll(kind Kind) *mongo.Collection {
	return l.db.Collection("log_" + string(kind))
}

// EnsureIndexes cria o índice único de seq em todas as coleções.
func (l *MongoLog) EnsureIndexes(ctx context.Context) error {
	for _, kind := range Kinds {
		if err := l.ensureSeqIndex(ctx, kind); err != nil {
			return fmt.Errorf("recordlog: index %s: %w", kind, err)
		}
	}
	return nil
}

func (l *MongoLog) ensureSeqIndex(ctx context.Context, kind Kind) error {
	return ensureSeqIndex(ctx, l.coll(kind))
}

func ensureSeqIndex(ctx context.Context, coll *mongo.Collection) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "seq", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("uniq_seq"),
	}
	idx := coll.Indexes()
	_, err := idx.CreateOne(ctx, model)
	if err == nil {
		return nil
	}
	// Se já existir com outra opção, tenta dropar e recriar
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 85 { // IndexOptionsConflict
		if _, dropErr := idx.DropOne(ctx, "uniq_seq"); dropErr != nil {
			return fmt.Errorf("drop index uniq_seq: %w", dropErr)
		}
		_, err = idx.CreateOne(ctx, model)
	}
	return err
}

func (l *MongoLog) lock(kind Kind) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[kind]
	if !ok {
		m = &sync.Mutex{}
		l.locks[kind] = m
	}
	return m
}

// lastSeq precisa do lock do kind.
func (l *MongoLog) lastSeq(ctx context.Context, kind Kind) (int64, error) {
	l.mu.Lock()
	s, ok := l.seq[kind]
	l.mu.Unlock()
	if ok {
		return s, nil
	}
	var last logEntry
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})
	err := l.coll(kind).FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}
	l.setSeq(kind, last.Seq)
	return last.Seq, nil
}

func (l *MongoLog) setSeq(kind Kind, s int64) {
	l.mu.Lock()
	l.seq[kind] = s
	l.mu.Unlock()
}

func (l *MongoLog) Append(ctx context.Context, kind Kind, line []byte) error {
	if err := validKind(kind); err != nil {
		return err
	}
	m := l.lock(kind)
	m.Lock()
	defer m.Unlock()

	last, err := l.lastSeq(ctx, kind)
	if err != nil {
		return fmt.Errorf("recordlog: seq %s: %w", kind, err)
	}
	entry := logEntry{Seq: last + 1, Line: string(line), WrittenAt: time.Now().UTC()}
	if _, err := l.coll(kind).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("recordlog: append %s: %w", kind, err)
	}
	l.setSeq(kind, entry.Seq)
	return nil
}

// Rewrite grava o snapshot em "log_<kind>_tmp" e troca pela coleção viva com
// renameCollection(dropTarget). Falha antes do rename deixa o stream antigo intacto.
func (l *MongoLog) Rewrite(ctx context.Context, kind Kind, lines [][]byte) error {
	if err := validKind(kind); err != nil {
		return err
	}
	m := l.lock(kind)
	m.Lock()
	defer m.Unlock()

	tmpName := "log_" + string(kind) + "_tmp"
	tmp := l.db.Collection(tmpName)
	// sobra de um rewrite interrompido
	if err := tmp.Drop(ctx); err != nil {
		return fmt.Errorf("recordlog: rewrite %s: drop tmp: %w", kind, err)
	}
	if err := l.db.CreateCollection(ctx, tmpName); err != nil {
		return fmt.Errorf("recordlog: rewrite %s: create tmp: %w", kind, err)
	}
	if err := ensureSeqIndex(ctx, tmp); err != nil {
		l.dropTmp(tmp)
		return fmt.Errorf("recordlog: rewrite %s: tmp index: %w", kind, err)
	}

	if len(lines) > 0 {
		now := time.Now().UTC()
		docs := make([]any, 0, len(lines))
		for i, line := range lines {
			docs = append(docs, logEntry{Seq: int64(i + 1), Line: string(line), WrittenAt: now})
		}
		if _, err := tmp.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
			l.dropTmp(tmp)
			return fmt.Errorf("recordlog: rewrite %s: %w", kind, err)
		}
	}

	dbName := l.db.Name()
	cmd := bson.D{
		{Key: "renameCollection", Value: dbName + "." + tmpName},
		{Key: "to", Value: dbName + "." + l.coll(kind).Name()},
		{Key: "dropTarget", Value: true},
	}
	if err := l.db.Client().Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
		l.dropTmp(tmp)
		// rename falhou: a coleção viva continua a antiga, recarrega o seq dela
		l.mu.Lock()
		delete(l.seq, kind)
		l.mu.Unlock()
		return fmt.Errorf("recordlog: rewrite %s: rename: %w", kind, err)
	}
	l.setSeq(kind, int64(len(lines)))
	return nil
}

// dropTmp usa contexto próprio: o ctx do chamador pode já ter expirado.
func (l *MongoLog) dropTmp(tmp *mongo.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = tmp.Drop(ctx)
}

func (l *MongoLog) ReadAll(ctx context.Context, kind Kind) ([][]byte, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	m := l.lock(kind)
	m.Lock()
	defer m.Unlock()

	cur, err := l.coll(kind).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("recordlog: read %s: %w", kind, err)
	}
	defer cur.Close(ctx)

	var (
		out  [][]byte
		last int64
	)
	for cur.Next(ctx) {
		var e logEntry
		if err := cur.Decode(&e); err != nil {
			return nil, fmt.Errorf("recordlog: decode %s: %w", kind, err)
		}
		last = e.Seq
		if e.Line == "" {
			continue
		}
		out = append(out, []byte(e.Line))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("recordlog: read %s: %w", kind, err)
	}
	l.setSeq(kind, last)
	return out, nil
}

// Close não desconecta o client: quem criou o client é dono dele.
func (l *MongoLog) Close() error { return nil }
