// Package vectorstore registers the vectorstore::put, vectorstore::query
// and vectorstore::dispose host functions: a cosine-similarity top-k
// store backed by modernc.org/sqlite, a pure-Go SQLite driver. It
// registers directly through host.Registry.RegisterNamespaced under
// the "vectorstore" namespace.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/rill-lang/rill/host"
	"github.com/rill-lang/rill/value"
)

// Store wraps a sqlite-backed vector collection. The zero value is not
// usable; construct with Open.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and
// ensures its schema. path may be ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vectors (
		id TEXT PRIMARY KEY,
		embedding BLOB NOT NULL,
		metadata TEXT NOT NULL DEFAULT ''
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorstore: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Registrations returns the host.Registration set exposed under the
// "vectorstore" namespace.
func (s *Store) Registrations() []host.Registration {
	return []host.Registration{
		{
			Name: "put",
			Params: []value.ParamSpec{
				{Name: "id", Type: "string", Doc: "unique key the entry is stored and later disposed under"},
				{Name: "embedding", Type: "vector", Doc: "embedding to store"},
				{Name: "metadata", Type: "string", Doc: "opaque metadata returned alongside query hits", DefaultValue: value.String{Value: ""}},
			},
			Fn:          s.put,
			Description: "stores a vector under id, overwriting any prior entry",
			ReturnType:  "null",
		},
		{
			Name: "query",
			Params: []value.ParamSpec{
				{Name: "embedding", Type: "vector", Doc: "query embedding"},
				{Name: "k", Type: "number", Doc: "number of nearest neighbors to return", DefaultValue: value.Number{Value: 10}},
			},
			Fn:          s.query,
			Description: "returns the k nearest stored vectors by cosine similarity, most similar first",
			ReturnType:  "list",
		},
		{
			Name: "dispose",
			Params: []value.ParamSpec{
				{Name: "id", Type: "string", Doc: "key of the entry to remove"},
			},
			Fn:          s.dispose,
			Description: "removes a stored vector by id",
			ReturnType:  "null",
		},
	}
}

// Close releases the underlying sqlite connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(ctx context.Context, h value.Host, args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("vectorstore::put requires id and embedding arguments")
	}
	id, ok := args[0].(value.String)
	if !ok {
		return nil, fmt.Errorf("vectorstore::put id must be a string, got %s", value.InferKind(args[0]))
	}
	vec, ok := args[1].(*value.Vector)
	if !ok {
		return nil, fmt.Errorf("vectorstore::put embedding must be a vector, got %s", value.InferKind(args[1]))
	}
	metadata := ""
	if len(args) > 2 {
		if m, ok := args[2].(value.String); ok {
			metadata = m.Value
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vectors (id, embedding, metadata) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET embedding = excluded.embedding, metadata = excluded.metadata`,
		id.Value, encodeVector(vec.Values), metadata)
	if err != nil {
		return nil, fmt.Errorf("vectorstore::put: %w", err)
	}
	h.Emit("host_call", map[string]interface{}{"function": "vectorstore::put", "id": id.Value})
	return value.Null{}, nil
}

func (s *Store) query(ctx context.Context, h value.Host, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("vectorstore::query requires an embedding argument")
	}
	query, ok := args[0].(*value.Vector)
	if !ok {
		return nil, fmt.Errorf("vectorstore::query embedding must be a vector, got %s", value.InferKind(args[0]))
	}
	k := 10
	if len(args) > 1 {
		if n, ok := args[1].(value.Number); ok {
			k = int(n.Value)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding, metadata FROM vectors`)
	if err != nil {
		return nil, fmt.Errorf("vectorstore::query: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id       string
		metadata string
		score    float64
	}
	var candidates []scored
	for rows.Next() {
		var id, metadata string
		var blob []byte
		if err := rows.Scan(&id, &blob, &metadata); err != nil {
			return nil, fmt.Errorf("vectorstore::query: scanning row: %w", err)
		}
		candidates = append(candidates, scored{id: id, metadata: metadata, score: cosineSimilarity(query.Values, decodeVector(blob))})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore::query: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if k < len(candidates) {
		candidates = candidates[:k]
	}

	out := make([]value.Value, len(candidates))
	for i, c := range candidates {
		entry := value.NewDict()
		entry = entry.With("id", value.String{Value: c.id})
		entry = entry.With("score", value.Number{Value: c.score})
		entry = entry.With("metadata", value.String{Value: c.metadata})
		out[i] = entry
	}

	h.Emit("host_call", map[string]interface{}{"function": "vectorstore::query", "k": k})
	return value.NewList(out...), nil
}

func (s *Store) dispose(ctx context.Context, h value.Host, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("vectorstore::dispose requires an id argument")
	}
	id, ok := args[0].(value.String)
	if !ok {
		return nil, fmt.Errorf("vectorstore::dispose id must be a string, got %s", value.InferKind(args[0]))
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vectors WHERE id = ?`, id.Value); err != nil {
		return nil, fmt.Errorf("vectorstore::dispose: %w", err)
	}
	h.Emit("host_call", map[string]interface{}{"function": "vectorstore::dispose", "id": id.Value})
	return value.Null{}, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func encodeVector(vs []float32) []byte {
	buf := make([]byte, len(vs)*4)
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
