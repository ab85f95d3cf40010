//go:build tools

// Development tools pinned in go.sum. Install the linter with:
// go install github.com/golangci/golangci-lint/cmd/golangci-lint
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
