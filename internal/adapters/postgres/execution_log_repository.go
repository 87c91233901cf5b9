package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// errExecutionAlreadyTerminal guards the "completed exactly once" invariant:
// a Complete call that matches no running row is a caller bug, not a
// transient failure.
var errExecutionAlreadyTerminal = errors.New("execution log already completed")

// ExecutionLogRepository is the append-then-update-once tool execution log
// (spec §4.8/§4.9: created running, completed exactly once).
type ExecutionLogRepository struct {
	BaseRepository
}

func NewExecutionLogRepository(pool *pgxpool.Pool) *ExecutionLogRepository {
	return &ExecutionLogRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *ExecutionLogRepository) Create(ctx context.Context, l *models.ToolExecutionLog) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	params, err := json.Marshal(l.InputParams)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tool_execution_log (
			id, manifest_id, conversation_id, turn_index, input_params,
			started_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.conn(ctx).Exec(ctx, query,
		l.ID, l.ManifestID, nullString(l.ConversationID), nullInt(ptrIntToInt(l.TurnIndex)),
		params, l.StartedAt, l.Status,
	)
	return err
}

func (r *ExecutionLogRepository) Complete(ctx context.Context, l *models.ToolExecutionLog) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE tool_execution_log SET
			ended_at = $2, duration_ms = $3, status = $4, output = $5, error = $6,
			exit_code = $7, cpu_percent = $8, peak_memory_mb = $9, container_ref = $10
		WHERE id = $1 AND status = 'running'`

	tag, err := r.conn(ctx).Exec(ctx, query,
		l.ID, nullTime(l.EndedAt), l.DurationMs, l.Status, nullString(l.Output), nullString(l.Error),
		nullInt(ptrIntToInt(l.ExitCode)), l.CPUPercent, l.PeakMemoryMB, nullString(l.ContainerRef),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errExecutionAlreadyTerminal
	}
	return nil
}

func (r *ExecutionLogRepository) GetByID(ctx context.Context, id string) (*models.ToolExecutionLog, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := executionLogSelectQuery() + " WHERE id = $1"
	return scanExecutionLog(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *ExecutionLogRepository) ListByManifest(ctx context.Context, manifestID string, limit int) ([]*models.ToolExecutionLog, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}

	query := executionLogSelectQuery() + " WHERE manifest_id = $1 ORDER BY started_at DESC LIMIT $2"
	rows, err := r.conn(ctx).Query(ctx, query, manifestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ToolExecutionLog
	for rows.Next() {
		l, err := scanExecutionLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func executionLogSelectQuery() string {
	return `
		SELECT id, manifest_id, conversation_id, turn_index, input_params,
			   started_at, ended_at, duration_ms, status, output, error,
			   exit_code, cpu_percent, peak_memory_mb, container_ref
		FROM tool_execution_log`
}

func scanExecutionLog(row rowScanner) (*models.ToolExecutionLog, error) {
	var (
		l                          models.ToolExecutionLog
		conversationID             sql.NullString
		turnIndex                  sql.NullInt32
		params                     []byte
		endedAt                    sql.NullTime
		output, errMsg, container  sql.NullString
		exitCode                   sql.NullInt32
	)
	if err := row.Scan(
		&l.ID, &l.ManifestID, &conversationID, &turnIndex, &params,
		&l.StartedAt, &endedAt, &l.DurationMs, &l.Status, &output, &errMsg,
		&exitCode, &l.CPUPercent, &l.PeakMemoryMB, &container,
	); err != nil {
		return nil, err
	}
	l.ConversationID = getString(conversationID)
	if turnIndex.Valid {
		idx := int(turnIndex.Int32)
		l.TurnIndex = &idx
	}
	l.EndedAt = getTimePtr(endedAt)
	l.Output = getString(output)
	l.Error = getString(errMsg)
	if exitCode.Valid {
		code := int(exitCode.Int32)
		l.ExitCode = &code
	}
	l.ContainerRef = getString(container)
	if len(params) > 0 {
		if err := json.Unmarshal(params, &l.InputParams); err != nil {
			return nil, err
		}
	}
	return &l, nil
}
