package ai

import "context"

// Client is the remote text-generation collaborator. It takes extracted
// report text and returns a free-text interpretation; the returned string
// carries no format contract.
type Client interface {
	Analyze(ctx context.Context, text string) (string, error)
}
