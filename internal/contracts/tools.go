package contracts

import "time"

type ToolStatus string

const (
	ToolPendingApproval ToolStatus = "pending_approval"
	ToolActive          ToolStatus = "active"
	ToolSuspended       ToolStatus = "suspended"
	ToolDeprecated      ToolStatus = "deprecated"
)

var ToolCategories = []string{"scripture-study", "prayer", "education", "ethics", "moderation", "other"}

const (
	DefaultToolRateLimit  = 100
	DefaultToolAuthMethod = "api_key"
)

// ToolRegistration describes a member's AI tool offered to the community
type ToolRegistration struct {
	ProjectID            string         `json:"project_id" yaml:"project_id" validate:"required"`
	ToolName             string         `json:"tool_name" yaml:"tool_name" validate:"min=3,max=100"`
	Description          string         `json:"description" yaml:"description" validate:"min=20,max=500"`
	Category             string         `json:"category" yaml:"category" validate:"oneof=scripture-study prayer education ethics moderation other"`
	APIEndpoint          string         `json:"api_endpoint" yaml:"api_endpoint" validate:"required,http_url"`
	AuthenticationMethod string         `json:"authentication_method" yaml:"authentication_method" validate:"oneof=api_key oauth none"`
	InputSchema          map[string]any `json:"input_schema" yaml:"input_schema" validate:"required"`
	OutputSchema         map[string]any `json:"output_schema" yaml:"output_schema" validate:"required"`
	RateLimit            int            `json:"rate_limit" yaml:"rate_limit" validate:"min=1"`
	RequiresApproval     *bool          `json:"requires_approval,omitempty" yaml:"requires_approval"`
	SpiritualApplication string         `json:"spiritual_application" yaml:"spiritual_application" validate:"required"`
}

// ApplyDefaults fills the optional fields the way the registration form does
func (r *ToolRegistration) ApplyDefaults() {
	if r.AuthenticationMethod == "" {
		r.AuthenticationMethod = DefaultToolAuthMethod
	}
	if r.RateLimit == 0 {
		r.RateLimit = DefaultToolRateLimit
	}
	if r.RequiresApproval == nil {
		approval := true
		r.RequiresApproval = &approval
	}
}

// Validate checks the registration. Call ApplyDefaults first.
func (r ToolRegistration) Validate() error {
	return check(r)
}

// RegisterToolRequest is the wire body of POST /tools/register
type RegisterToolRequest struct {
	ToolRegistration
	CreatorID string `json:"creator_id"`
}

// RegisteredTool is a registry entry with its usage metrics
type RegisteredTool struct {
	ToolRegistration
	ID                     string     `json:"id"`
	CreatorID              string     `json:"creator_id"`
	Status                 ToolStatus `json:"status"`
	TotalExecutions        int        `json:"total_executions"`
	SuccessRate            float64    `json:"success_rate"`
	AverageExecutionTimeMS float64    `json:"average_execution_time_ms"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
	ApprovedAt             *time.Time `json:"approved_at"`
	ApprovedBy             *string    `json:"approved_by"`
}

// ToolExecutionRequest runs a registered tool on behalf of a member
type ToolExecutionRequest struct {
	ToolID    string         `json:"tool_id"`
	InputData map[string]any `json:"input_data"`
	UserID    string         `json:"user_id"`
}

// ToolExecutionResponse reports one tool run. Failures are reported with
// Success false rather than as transport errors.
type ToolExecutionResponse struct {
	ToolID          string         `json:"tool_id"`
	Success         bool           `json:"success"`
	OutputData      map[string]any `json:"output_data"`
	ExecutionTimeMS float64        `json:"execution_time_ms"`
	CreditsUsed     *int           `json:"credits_used"`
	ErrorMessage    *string        `json:"error_message"`
	Timestamp       time.Time      `json:"timestamp"`
}

// ToolListParams are the optional filters of GET /tools/list
type ToolListParams struct {
	Category string
	Status   string
	Page     int
	PerPage  int
}

type ToolListResponse struct {
	Tools   []RegisteredTool `json:"tools"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}
