package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
)

const toolColumns = `id, project_id, creator_id, tool_name, description, category, api_endpoint,
	authentication_method, input_schema, output_schema, rate_limit, requires_approval,
	spiritual_application, status, total_executions, success_rate, average_execution_time_ms,
	created_at, updated_at, approved_at, approved_by`

func (s *Store) CreateTool(ctx context.Context, t *contracts.RegisteredTool) error {
	if t.ID == "" {
		t.ID = newID()
	}
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt

	input, err := encodeJSON(t.InputSchema)
	if err != nil {
		return err
	}
	output, err := encodeJSON(t.OutputSchema)
	if err != nil {
		return err
	}
	requiresApproval := t.RequiresApproval == nil || *t.RequiresApproval

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO community_tools ("+toolColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.ProjectID, t.CreatorID, t.ToolName, t.Description, t.Category, t.APIEndpoint,
		t.AuthenticationMethod, input, output, t.RateLimit, requiresApproval,
		t.SpiritualApplication, t.Status, t.TotalExecutions, t.SuccessRate, t.AverageExecutionTimeMS,
		t.CreatedAt, t.UpdatedAt, t.ApprovedAt, t.ApprovedBy,
	)
	if err != nil {
		return fmt.Errorf("insert tool: %w", err)
	}
	return nil
}

func (s *Store) GetTool(ctx context.Context, id string) (*contracts.RegisteredTool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+toolColumns+" FROM community_tools WHERE id = ?", id)
	t, err := scanTool(row)
	if err != nil {
		return nil, notFound(err, "tool")
	}
	return t, nil
}

// ListTools returns the most used tools first
func (s *Store) ListTools(ctx context.Context, filter domain.ToolFilter) ([]contracts.RegisteredTool, int, error) {
	where := " WHERE status = ?"
	args := []any{filter.Status}
	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, filter.Category)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM community_tools"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tools: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+toolColumns+" FROM community_tools"+where+
			" ORDER BY total_executions DESC, created_at DESC LIMIT ? OFFSET ?",
		append(args, limitOrDefault(filter.Limit), filter.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	tools := []contracts.RegisteredTool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, *t)
	}
	return tools, total, rows.Err()
}

func scanTool(row scanner) (*contracts.RegisteredTool, error) {
	var t contracts.RegisteredTool
	var input, output string
	var requiresApproval bool
	var approvedAt sql.NullTime
	var approvedBy sql.NullString
	if err := row.Scan(&t.ID, &t.ProjectID, &t.CreatorID, &t.ToolName, &t.Description, &t.Category,
		&t.APIEndpoint, &t.AuthenticationMethod, &input, &output, &t.RateLimit, &requiresApproval,
		&t.SpiritualApplication, &t.Status, &t.TotalExecutions, &t.SuccessRate,
		&t.AverageExecutionTimeMS, &t.CreatedAt, &t.UpdatedAt, &approvedAt, &approvedBy); err != nil {
		return nil, err
	}

	var err error
	if t.InputSchema, err = decodeObject(input); err != nil {
		return nil, err
	}
	if t.OutputSchema, err = decodeObject(output); err != nil {
		return nil, err
	}
	t.RequiresApproval = &requiresApproval
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	if approvedBy.Valid {
		t.ApprovedBy = &approvedBy.String
	}
	return &t, nil
}

func (s *Store) UpdateToolStats(ctx context.Context, id string, total int, successRate, avgMS float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE community_tools
		SET total_executions = ?, success_rate = ?, average_execution_time_ms = ?, updated_at = ?
		WHERE id = ?
	`, total, successRate, avgMS, s.now(), id)
	if err != nil {
		return fmt.Errorf("update tool stats: %w", err)
	}
	return nil
}

// ApproveTool activates a tool awaiting approval
func (s *Store) ApproveTool(ctx context.Context, id, approverID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE community_tools
		SET status = ?, approved_at = ?, approved_by = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, contracts.ToolActive, at, approverID, at, id, contracts.ToolPendingApproval)
	if err != nil {
		return fmt.Errorf("approve tool: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tool pending approval: %w", domain.ErrNotFound)
	}
	return nil
}

func (s *Store) LogExecution(ctx context.Context, e *domain.ToolExecution) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = s.now()
	}
	input, err := encodeJSON(e.InputData)
	if err != nil {
		return err
	}
	output, err := encodeJSON(e.OutputData)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tool_executions
			(id, tool_id, user_id, input_data, output_data, execution_time_ms, success, error_message, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ToolID, e.UserID, input, output, e.ExecutionTimeMS, e.Success, e.ErrorMessage, e.ExecutedAt.UTC())
	if err != nil {
		return fmt.Errorf("log tool execution: %w", err)
	}
	return nil
}

func (s *Store) CountExecutionsSince(ctx context.Context, toolID, userID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tool_executions WHERE tool_id = ? AND user_id = ? AND executed_at >= ?",
		toolID, userID, since.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tool executions: %w", err)
	}
	return n, nil
}
