// Package domain holds the core model types and the interfaces that
// connect the pipeline stages to their external collaborators (source
// adapters, scorer, persistence, resolver cache). Concrete
// implementations live in their own packages and are wired together in
// cmd/server.
package domain
