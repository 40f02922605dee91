package apierrors

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/goatkit/kbgen/internal/kberrors"
)

// ErrorCode represents a registered API error code
type ErrorCode struct {
	Code       string        `json:"code"`        // Full namespaced code (e.g., "kb:not_found")
	Message    string        `json:"message"`     // Default English message
	HTTPStatus int           `json:"http_status"` // Suggested HTTP status code
	Kind       kberrors.Kind `json:"-"`           // Failure kind served by this code, kb namespace only
}

type registry struct {
	mu     sync.RWMutex
	codes  map[string]ErrorCode
	byNS   map[string][]string
	byKind map[kberrors.Kind]string
}

// Registry is the global error code registry
var Registry = &registry{
	codes:  make(map[string]ErrorCode),
	byNS:   make(map[string][]string),
	byKind: make(map[kberrors.Kind]string),
}

// Register adds an error code to the registry
func (r *registry) Register(e ErrorCode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codes[e.Code]; !exists {
		ns := "core"
		if idx := strings.Index(e.Code, ":"); idx > 0 {
			ns = e.Code[:idx]
		}
		r.byNS[ns] = append(r.byNS[ns], e.Code)
	}
	r.codes[e.Code] = e

	if e.Kind != kberrors.KindInternal {
		r.byKind[e.Kind] = e.Code
	}
}

// Get returns an error code by its full code string
func (r *registry) Get(code string) (ErrorCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.codes[code]
	return e, ok
}

// ForKind returns the code registered for a failure kind. Unmapped kinds
// resolve to core:internal_error.
func (r *registry) ForKind(kind kberrors.Kind) ErrorCode {
	r.mu.RLock()
	code, ok := r.byKind[kind]
	r.mu.RUnlock()
	if ok {
		if e, found := r.Get(code); found {
			return e
		}
	}
	e, _ := r.Get(CodeInternalError)
	return e
}

// ByNamespace returns all error codes for a given namespace, sorted by code
func (r *registry) ByNamespace(ns string) []ErrorCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := r.byNS[ns]
	result := make([]ErrorCode, 0, len(codes))
	for _, code := range codes {
		if e, ok := r.codes[code]; ok {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// HTTPStatus returns the suggested HTTP status for a code, or 500 if unknown
func (r *registry) HTTPStatus(code string) int {
	if e, ok := r.Get(code); ok {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Message returns the default message for a code, or the code itself if unknown
func (r *registry) Message(code string) string {
	if e, ok := r.Get(code); ok {
		return e.Message
	}
	return code
}
