package spanz

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// CallerInfo identifies where a tracer was created.
type CallerInfo struct {
	File string `json:"full_path"`
	Line int    `json:"line"`
}

// CaptureCaller returns the file and line skip frames above the caller of
// CaptureCaller. Returns nil when the frame is unavailable.
func CaptureCaller(skip int) *CallerInfo {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return nil
	}
	return &CallerInfo{File: file, Line: line}
}

// String returns "file.go:line" without the directory.
func (c *CallerInfo) String() string {
	if c == nil || c.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(c.File), c.Line)
}

// Location returns the full "path:line".
func (c *CallerInfo) Location() string {
	if c == nil || c.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}
