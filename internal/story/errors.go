package story

import "errors"

var (
	// ErrDuplicateBranch reports a branch name that is already taken in the graph.
	ErrDuplicateBranch = errors.New("duplicate branch")
	// ErrInvalidReference reports a branch or commit handle that does not belong to the graph.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidRecord reports a commit or merge record missing a required field.
	ErrInvalidRecord = errors.New("invalid record")
)
