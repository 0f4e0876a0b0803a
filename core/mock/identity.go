package mock

import (
	"context"
	"errors"

	"github.com/hivekrb/hivekrb/core"
)

var (
	_ core.Identity     = (*Identity)(nil)
	_ core.ScopeChecker = (*Identity)(nil)
)

// Identity is an in-memory core.Identity which tracks scope entries.
type Identity struct {
	Name string

	active  bool
	Entered int
	Exited  int
}

func NewIdentity(name string) *Identity {
	return &Identity{Name: name}
}

func (i *Identity) Principal() string {
	return i.Name
}

func (i *Identity) Impersonate(ctx context.Context, fn func(context.Context) error) error {
	if i.active {
		return errors.New("identity context already entered")
	}
	i.active = true
	i.Entered++
	defer func() {
		i.active = false
		i.Exited++
	}()

	return fn(ctx)
}

func (i *Identity) InScope(context.Context) bool {
	return i.active
}
