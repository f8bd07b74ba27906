package normalisers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps MIME types to normalisers.
// A normaliser advertising "text/*" serves any text type without a more
// specific match.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, normaliser)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Get returns the highest-priority normaliser for the MIME type.
func (r *Registry) Get(mimeType string) (driven.Normaliser, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		if handles(n, mimeType) {
			return n, nil
		}
	}

	family, _, _ := strings.Cut(mimeType, "/")
	wildcard := family + "/*"
	for _, n := range r.normalisers {
		if handles(n, wildcard) {
			return n, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType)
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

func handles(n driven.Normaliser, mimeType string) bool {
	for _, t := range n.SupportedMIMETypes() {
		if t == mimeType {
			return true
		}
	}
	return false
}
