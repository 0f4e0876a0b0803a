package adapters

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hivekrb/hivekrb/core"
)

var (
	errNoValidTypeAliases   = errors.New("no valid type aliases provided")
	ErrUnsupportedTypeAlias = errors.New("no driver registered for provided type alias")
)

// registeredAdapters holds implemented adapters - specific adapters register themselves in their init functions.
var registeredAdapters = make(map[string]core.Adapter)

// register registers a new adapter for specific service
func register(adapter core.Adapter, aliases ...string) error {
	if len(aliases) < 1 {
		return errNoValidTypeAliases
	}

	invalidCount := 0
	for _, alias := range aliases {
		if alias == "" {
			invalidCount++
			continue
		}
		registeredAdapters[alias] = adapter
	}

	if invalidCount == len(aliases) {
		return errNoValidTypeAliases
	}

	return nil
}

// Mux is an interface to all internal adapters.
type Mux struct{}

// GetAdapter looks up the adapter registered under typ.
func (*Mux) GetAdapter(typ string) (core.Adapter, error) {
	value, ok := registeredAdapters[typ]
	if !ok {
		return nil, &core.DriverRegistrationError{Driver: typ, Err: ErrUnsupportedTypeAlias}
	}

	return value, nil
}

func (*Mux) AddAdapter(typ string, adapter core.Adapter) error {
	return register(adapter, typ)
}

// Aliases lists every registered alias in alphabetical order.
func (*Mux) Aliases() []string {
	out := make([]string, 0, len(registeredAdapters))
	for alias := range registeredAdapters {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// OpenSession is a wrapper around core.OpenSession that uses the internal mux for
// adapter lookup.
func OpenSession(ctx context.Context, typ string, identity core.Identity, endpoint core.Endpoint, opts ...core.SessionOption) (*core.Session, error) {
	adapter, err := new(Mux).GetAdapter(typ)
	if err != nil {
		return nil, fmt.Errorf("Mux.GetAdapter: %w", err)
	}

	s, err := core.OpenSession(ctx, adapter, identity, endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("core.OpenSession: %w", err)
	}

	return s, nil
}
