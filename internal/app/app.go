package app

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Context carries app-wide dependencies and metadata.
type Context struct {
	Ctx       context.Context
	Config    Config
	Workspace WorkspaceHandle
	Logger    *slog.Logger
	// Session identifies one process invocation in logs and trace files.
	Session string
	Now     time.Time
	// Out receives human-readable progress output.
	Out io.Writer
}

// WorkspaceHandle is a minimal contract the workspace package provides.
type WorkspaceHandle interface {
	Path(parts ...string) string
}
