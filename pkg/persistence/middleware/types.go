// Package middleware layers persistence concerns over a ports.RunStore.
// Each middleware wraps the store it is given and forwards whatever it does
// not change, so stores and middlewares compose freely: a file store sealed
// at rest, a redis store with masked user text, or both.
package middleware

import "github.com/tablescout/tablescout/pkg/ports"

// Middleware wraps a RunStore with one additional persistence concern.
type Middleware func(ports.RunStore) ports.RunStore

// Chain applies middlewares in order; the last one ends up outermost and
// sees Save first. Masking before sealing is therefore spelled
// Chain(store, NewSealing(cfg), NewMasking(patterns)).
func Chain(store ports.RunStore, mws ...Middleware) ports.RunStore {
	for _, mw := range mws {
		store = mw(store)
	}
	return store
}
