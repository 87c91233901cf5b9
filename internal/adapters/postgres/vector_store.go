package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/longregen/slovo-agent/internal/domain"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// VectorStore is the C3 semantic memory collection, backed by pgvector.
// The summary column is stored encrypted at rest; only the embedding and
// bookkeeping columns are queryable in the clear.
type VectorStore struct {
	BaseRepository
	enc ports.EncryptionService
}

func NewVectorStore(pool *pgxpool.Pool, enc ports.EncryptionService) *VectorStore {
	return &VectorStore{
		BaseRepository: NewBaseRepository(pool),
		enc:            enc,
	}
}

func (s *VectorStore) Upsert(ctx context.Context, entry *models.SemanticEntry) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if len(entry.Embedding) == 0 {
		return errors.New("semantic entry must carry an embedding")
	}

	cipherSummary, err := s.enc.Encrypt([]byte(entry.Summary))
	if err != nil {
		return fmt.Errorf("encrypt summary: %w", err)
	}
	vec := pgvector.NewVector(entry.Embedding)

	query := `
		INSERT INTO semantic_memory (
			id, embedding, source, summary, conversation_id, tool_name, confidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			source = EXCLUDED.source,
			summary = EXCLUDED.summary,
			conversation_id = EXCLUDED.conversation_id,
			tool_name = EXCLUDED.tool_name,
			confidence = EXCLUDED.confidence`

	_, err = s.conn(ctx).Exec(ctx, query,
		entry.ID,
		vec,
		entry.Source,
		cipherSummary,
		nullString(entry.ConversationID),
		nullString(entry.ToolName),
		entry.Confidence,
		entry.CreatedAt,
	)
	return err
}

// Search finds the nearest neighbours to vec under cosine distance,
// breaking similarity ties by created_at descending (spec §4.3).
func (s *VectorStore) Search(ctx context.Context, vec []float32, opts ports.VectorSearchOptions) ([]ports.VectorSearchResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if len(vec) == 0 {
		return nil, errors.New("search vector cannot be empty")
	}
	k := opts.K
	if k <= 0 {
		k = 10
	}

	query := `
		SELECT id, embedding, source, summary, conversation_id, tool_name, confidence, created_at,
			   1 - (embedding <=> $1) AS similarity
		FROM semantic_memory
		WHERE 1=1`
	args := []interface{}{pgvector.NewVector(vec)}

	if opts.SourceFilter != "" {
		args = append(args, opts.SourceFilter)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if opts.MinConfidence > 0 {
		args = append(args, opts.MinConfidence)
		query += fmt.Sprintf(" AND confidence >= $%d", len(args))
	}

	query += " ORDER BY embedding <=> $1, created_at DESC LIMIT " + fmt.Sprintf("%d", k)

	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ports.VectorSearchResult
	for rows.Next() {
		entry, similarity, err := s.scanWithScore(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, ports.VectorSearchResult{Entry: entry, Score: similarity})
	}
	return results, rows.Err()
}

func (s *VectorStore) Get(ctx context.Context, id string) (*models.SemanticEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, embedding, source, summary, conversation_id, tool_name, confidence, created_at
		FROM semantic_memory WHERE id = $1`

	entry, err := s.scanEntry(s.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if checkNoRows(err) {
			return nil, domain.ErrMemoryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *VectorStore) Update(ctx context.Context, id string, summary *string, confidence *float64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if summary != nil {
		cipherSummary, err := s.enc.Encrypt([]byte(*summary))
		if err != nil {
			return fmt.Errorf("encrypt summary: %w", err)
		}
		if _, err := s.conn(ctx).Exec(ctx,
			`UPDATE semantic_memory SET summary = $2 WHERE id = $1`, id, cipherSummary); err != nil {
			return err
		}
	}
	if confidence != nil {
		if _, err := s.conn(ctx).Exec(ctx,
			`UPDATE semantic_memory SET confidence = $2 WHERE id = $1`, id, *confidence); err != nil {
			return err
		}
	}
	return nil
}

func (s *VectorStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := s.conn(ctx).Exec(ctx, `DELETE FROM semantic_memory WHERE id = $1`, id)
	return err
}

func (s *VectorStore) Scroll(ctx context.Context, offset, limit int) ([]*models.SemanticEntry, int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := s.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM semantic_memory`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.conn(ctx).Query(ctx, `
		SELECT id, embedding, source, summary, conversation_id, tool_name, confidence, created_at
		FROM semantic_memory ORDER BY created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*models.SemanticEntry
	for rows.Next() {
		entry, err := s.scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

func (s *VectorStore) ClearAll(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := s.conn(ctx).Exec(ctx, `TRUNCATE semantic_memory`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *VectorStore) scanEntry(row rowScanner) (*models.SemanticEntry, error) {
	var (
		m                        models.SemanticEntry
		vec                      pgvector.Vector
		cipherSummary            []byte
		conversationID, toolName sql.NullString
	)
	if err := row.Scan(
		&m.ID, &vec, &m.Source, &cipherSummary,
		&conversationID, &toolName, &m.Confidence, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return s.finishEntry(&m, vec, cipherSummary, conversationID, toolName)
}

func (s *VectorStore) scanWithScore(row rowScanner) (*models.SemanticEntry, float64, error) {
	var (
		m                        models.SemanticEntry
		vec                      pgvector.Vector
		cipherSummary            []byte
		conversationID, toolName sql.NullString
		similarity               float64
	)
	if err := row.Scan(
		&m.ID, &vec, &m.Source, &cipherSummary,
		&conversationID, &toolName, &m.Confidence, &m.CreatedAt, &similarity,
	); err != nil {
		return nil, 0, err
	}
	entry, err := s.finishEntry(&m, vec, cipherSummary, conversationID, toolName)
	if err != nil {
		return nil, 0, err
	}
	return entry, similarity, nil
}

func (s *VectorStore) finishEntry(m *models.SemanticEntry, vec pgvector.Vector, cipherSummary []byte, conversationID, toolName sql.NullString) (*models.SemanticEntry, error) {
	m.Kind = models.MemoryKindSemantic
	m.Embedding = vec.Slice()
	m.ConversationID = getString(conversationID)
	m.ToolName = getString(toolName)

	plaintext, err := s.enc.Decrypt(cipherSummary)
	if err != nil {
		return nil, fmt.Errorf("decrypt summary: %w", err)
	}
	m.Summary = string(plaintext)
	return m, nil
}
