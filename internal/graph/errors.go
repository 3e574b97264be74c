package graph

import "errors"

// Sentinel errors the core distinguishes: ErrNotFound for a build
// directory without a build.ninja, and ErrFormat for malformed binary/text
// input. I/O, storage and transaction failures are wrapped os or
// database/sql errors and don't have a sentinel of their own — callers
// already check err != nil.
var (
	ErrNotFound = errors.New("build directory not found")
	ErrFormat   = errors.New("malformed input")
)
