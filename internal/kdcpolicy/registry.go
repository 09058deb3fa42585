// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package kdcpolicy

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/xrealmauthz/internal/errors"
	"github.com/hashicorp/xrealmauthz/internal/util"
)

// Registry stores a collection of policy modules by name. A host
// iterates the registered modules for every request it evaluates.
type Registry struct {
	modules map[string]Module

	sync.RWMutex
}

// NewRegistry creates a new policy module registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register registers a module under its name. Register returns an
// error if a module with the same name has already been registered.
func (r *Registry) Register(ctx context.Context, m Module) error {
	const op = "kdcpolicy.(Registry).Register"
	if util.IsNil(m) {
		return errors.New(ctx, errors.InvalidParameter, op, "missing module")
	}
	name := m.Name()
	if name == "" {
		return errors.New(ctx, errors.InvalidParameter, op, "missing module name")
	}

	r.Lock()
	defer r.Unlock()
	if _, present := r.modules[name]; present {
		return errors.New(ctx, errors.ModuleAlreadyRegistered, op, fmt.Sprintf("module %q already registered", name))
	}
	r.modules[name] = m
	return nil
}

// Lookup returns the module registered under name, if any.
func (r *Registry) Lookup(name string) (Module, bool) {
	r.RLock()
	defer r.RUnlock()

	m, ok := r.modules[name]
	return m, ok
}

// Modules returns all registered modules, sorted by name.
func (r *Registry) Modules() []Module {
	r.RLock()
	defer r.RUnlock()

	ret := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		ret = append(ret, m)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name() < ret[j].Name()
	})
	return ret
}
