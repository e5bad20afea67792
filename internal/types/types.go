// Package types provides common type definitions for the trade board system.
package types

// PlatformID represents a supported trading platform API
type PlatformID string

const (
	// PlatformTopstep represents the Topstep user API
	PlatformTopstep PlatformID = "topstep"
	// PlatformTradeify represents the Tradeify user API
	PlatformTradeify PlatformID = "tradeify"
)

// ParsePlatformID maps a share's platform tag to a PlatformID.
// An empty or unknown tag falls back to Topstep, matching the default
// endpoint selection of the dashboard.
func ParsePlatformID(tag string) PlatformID {
	switch tag {
	case string(PlatformTradeify):
		return PlatformTradeify
	default:
		return PlatformTopstep
	}
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Service error codes shared across layers
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeBoardNotFound = "BOARD_NOT_FOUND"
	CodeInvalidBoard  = "INVALID_BOARD"
	CodeFetchFailed   = "FETCH_FAILED"
)
