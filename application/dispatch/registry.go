package dispatch

import (
	"context"
	"fmt"
)

// Handler reacts to change records.
type Handler interface {
	// Name identifies the handler in logs and metrics; unique per registry.
	Name() string

	// Supports must be fast and free of side effects: it runs for every
	// record against every handler.
	Supports(rec ChangeRecord) bool

	// Process does the work. It may run concurrently with other records of
	// the same batch and again on redelivery of the same record. Once ctx is
	// done the dispatcher stops waiting for the call and counts it as failed.
	Process(ctx context.Context, rec ChangeRecord) error
}

// Registry is the fixed set of handlers assembled at start up.
type Registry struct {
	handlers []Handler
}

// NewRegistry validates and freezes the handler list. Order only affects logging.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	seen := make(map[string]struct{}, len(handlers))
	list := make([]Handler, 0, len(handlers))

	for i, h := range handlers {
		if h == nil {
			return nil, fmt.Errorf("handler %d is nil", i)
		}
		name := h.Name()
		if name == "" {
			return nil, fmt.Errorf("handler %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("handler %s registered twice", name)
		}
		seen[name] = struct{}{}
		list = append(list, h)
	}

	return &Registry{handlers: list}, nil
}

// Len returns the number of registered handlers
func (r *Registry) Len() int {
	return len(r.handlers)
}

// Names lists handler names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		names[i] = h.Name()
	}
	return names
}

// Supporting asks every handler whether it supports rec. A handler whose
// Supports panics is treated as not supporting and reported through onPanic.
func (r *Registry) Supporting(rec ChangeRecord, onPanic func(Handler, any)) []Handler {
	var out []Handler
	for _, h := range r.handlers {
		if supports(h, rec, onPanic) {
			out = append(out, h)
		}
	}
	return out
}

func supports(h Handler, rec ChangeRecord, onPanic func(Handler, any)) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			if onPanic != nil {
				onPanic(h, p)
			}
		}
	}()
	return h.Supports(rec)
}
