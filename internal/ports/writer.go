package ports

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// WriteRequest is a candidate memory write awaiting verifier approval.
type WriteRequest struct {
	Kind           models.MemoryKind
	Content        string
	Source         models.MetadataSource
	Confidence     float64
	ConversationID string
	Metadata       map[string]string
}

// VerifierApproval is the verifier's signed decision on a WriteRequest.
type VerifierApproval struct {
	Approved        bool
	Confidence      float64
	Reason          string
	AdjustedContent string
}

// WriteResult is the writer's outcome.
type WriteResult struct {
	Success         bool
	MemoryID        string
	Error           string
	VerifierApproved bool
}

// Writer (C6) applies the three-gate approval and routes by kind to C3 or
// C4.
type Writer interface {
	Write(ctx context.Context, req WriteRequest, approval VerifierApproval) (*WriteResult, error)
	// WriteWithoutApproval is the operator-inspector-only entry point; it
	// synthesises an approval at req.Confidence.
	WriteWithoutApproval(ctx context.Context, req WriteRequest) (*WriteResult, error)
}
