// Package tools runs the community AI tools registry: members register HTTP
// tools from their showcase projects and others execute them.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
)

const (
	executionTimeout = 30 * time.Second
	rateWindow       = time.Hour
	defaultPerPage   = 20
	maxPerPage       = 100
	maxResponseBytes = 1 << 20
)

var ErrDisabled = errors.New("community AI tools are disabled")

type Service struct {
	repo    domain.ToolRepository
	client  *http.Client
	enabled bool
	now     func() time.Time
	logger  *zap.Logger
}

type Option func(*Service)

// WithHTTPClient replaces the client used to call tool endpoints
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

func NewService(repo domain.ToolRepository, enabled bool, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		client:  &http.Client{Timeout: executionTimeout},
		enabled: enabled,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Enabled() bool {
	return s.enabled
}

// Register adds a tool built in one of the creator's projects
func (s *Service) Register(ctx context.Context, reg contracts.ToolRegistration, creatorID string) (*contracts.RegisteredTool, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if creatorID == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "creator_id is required")
	}
	reg.ApplyDefaults()
	if err := reg.Validate(); err != nil {
		return nil, domain.Errorf(domain.ErrInvalidInput, "%v", err)
	}

	owner, err := s.repo.ProjectCreator(ctx, reg.ProjectID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && owner != creatorID) {
		return nil, domain.Errorf(domain.ErrForbidden, "project not found or you don't have permission")
	}
	if err != nil {
		return nil, err
	}

	status := contracts.ToolActive
	if *reg.RequiresApproval {
		status = contracts.ToolPendingApproval
	}
	tool := &contracts.RegisteredTool{
		ToolRegistration: reg,
		CreatorID:        creatorID,
		Status:           status,
		SuccessRate:      1.0,
		CreatedAt:        s.now(),
	}
	if err := s.repo.CreateTool(ctx, tool); err != nil {
		return nil, err
	}

	s.logger.Info("tool registered",
		zap.String("tool_id", tool.ID),
		zap.String("tool_name", tool.ToolName),
		zap.String("status", string(tool.Status)))
	return tool, nil
}

func (s *Service) Get(ctx context.Context, id string) (*contracts.RegisteredTool, error) {
	return s.repo.GetTool(ctx, id)
}

// List pages through tools. Status defaults to active.
func (s *Service) List(ctx context.Context, params contracts.ToolListParams) (*contracts.ToolListResponse, error) {
	if params.Page == 0 {
		params.Page = 1
	}
	if params.PerPage == 0 {
		params.PerPage = defaultPerPage
	}
	if params.Page < 1 {
		return nil, domain.Errorf(domain.ErrInvalidInput, "page must be at least 1")
	}
	if params.PerPage < 1 || params.PerPage > maxPerPage {
		return nil, domain.Errorf(domain.ErrInvalidInput, "per_page must be between 1 and %d", maxPerPage)
	}
	status := contracts.ToolStatus(params.Status)
	if status == "" {
		status = contracts.ToolActive
	}

	tools, total, err := s.repo.ListTools(ctx, domain.ToolFilter{
		Status:   status,
		Category: params.Category,
		Limit:    params.PerPage,
		Offset:   (params.Page - 1) * params.PerPage,
	})
	if err != nil {
		return nil, err
	}
	return &contracts.ToolListResponse{
		Tools:   tools,
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
	}, nil
}

// Approve activates a pending tool
func (s *Service) Approve(ctx context.Context, id, approverID string) (*contracts.RegisteredTool, error) {
	if err := s.repo.ApproveTool(ctx, id, approverID, s.now()); err != nil {
		return nil, err
	}
	s.logger.Info("tool approved", zap.String("tool_id", id), zap.String("approved_by", approverID))
	return s.repo.GetTool(ctx, id)
}

// Execute runs the tool for the requesting user. Every failure, including an
// unknown tool or an exhausted rate limit, is reported in the response.
func (s *Service) Execute(ctx context.Context, req contracts.ToolExecutionRequest) contracts.ToolExecutionResponse {
	start := time.Now()

	tool, output, err := s.execute(ctx, req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	resp := contracts.ToolExecutionResponse{
		ToolID:          req.ToolID,
		Success:         err == nil,
		OutputData:      output,
		ExecutionTimeMS: elapsed,
		Timestamp:       s.now(),
	}
	if resp.OutputData == nil {
		resp.OutputData = map[string]any{}
	}
	if err != nil {
		msg := err.Error()
		resp.ErrorMessage = &msg
	}

	if tool != nil {
		s.record(ctx, tool, req, resp)
	}
	return resp
}

// execute returns the tool when it was reached, so the run is tracked
func (s *Service) execute(ctx context.Context, req contracts.ToolExecutionRequest) (*contracts.RegisteredTool, map[string]any, error) {
	if !s.enabled {
		return nil, nil, ErrDisabled
	}
	if req.UserID == "" {
		return nil, nil, errors.New("user_id is required")
	}

	tool, err := s.repo.GetTool(ctx, req.ToolID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("Tool not found: %s", req.ToolID)
	}
	if err != nil {
		return nil, nil, err
	}
	if tool.Status != contracts.ToolActive {
		return nil, nil, fmt.Errorf("Tool is not active. Status: %s", tool.Status)
	}

	used, err := s.repo.CountExecutionsSince(ctx, tool.ID, req.UserID, s.now().Add(-rateWindow))
	if err != nil {
		return nil, nil, err
	}
	if used >= tool.RateLimit {
		return nil, nil, fmt.Errorf("Rate limit exceeded. Max %d requests per hour.", tool.RateLimit)
	}

	output, err := s.call(ctx, tool.APIEndpoint, req.InputData)
	return tool, output, err
}

func (s *Service) call(ctx context.Context, endpoint string, input map[string]any) (map[string]any, error) {
	if input == nil {
		input = map[string]any{}
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call tool: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read tool response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tool returned status %d", resp.StatusCode)
	}

	var output map[string]any
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, fmt.Errorf("tool returned invalid JSON: %w", err)
	}
	return output, nil
}

// record updates rolling metrics and logs the run. Bookkeeping failures are
// logged and do not change the execution result.
func (s *Service) record(ctx context.Context, tool *contracts.RegisteredTool, req contracts.ToolExecutionRequest, resp contracts.ToolExecutionResponse) {
	total, rate, avg := RollingStats(tool.TotalExecutions, tool.SuccessRate, tool.AverageExecutionTimeMS,
		resp.Success, resp.ExecutionTimeMS)
	if err := s.repo.UpdateToolStats(ctx, tool.ID, total, rate, avg); err != nil {
		s.logger.Warn("update tool stats failed", zap.String("tool_id", tool.ID), zap.Error(err))
	}

	exec := &domain.ToolExecution{
		ToolID:          tool.ID,
		UserID:          req.UserID,
		InputData:       req.InputData,
		OutputData:      resp.OutputData,
		ExecutionTimeMS: resp.ExecutionTimeMS,
		Success:         resp.Success,
		ExecutedAt:      resp.Timestamp,
	}
	if resp.ErrorMessage != nil {
		exec.ErrorMessage = *resp.ErrorMessage
	}
	if err := s.repo.LogExecution(ctx, exec); err != nil {
		s.logger.Warn("log tool execution failed", zap.String("tool_id", tool.ID), zap.Error(err))
	}
}

// RollingStats folds one run into the running totals
func RollingStats(total int, successRate, avgMS float64, success bool, elapsedMS float64) (int, float64, float64) {
	successes := int(math.Round(successRate * float64(total)))
	if success {
		successes++
	}
	newTotal := total + 1
	newRate := float64(successes) / float64(newTotal)
	newAvg := (avgMS*float64(total) + elapsedMS) / float64(newTotal)
	return newTotal, newRate, newAvg
}
