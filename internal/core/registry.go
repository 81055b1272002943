package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownLayout is returned when a layout key is not registered.
	ErrUnknownLayout = errors.New("unknown layout")

	// ErrLayoutExists is returned when a layout key is already registered.
	ErrLayoutExists = errors.New("layout already registered")
)

var (
	layouts   = make(map[string]Layout)
	layoutsMu sync.RWMutex
)

// RegisterLayout adds a layout to the registry.
// Panics if the layout is invalid or its key is already registered;
// registration happens from init functions where a bad layout is a bug.
func RegisterLayout(l Layout) {
	if err := AddLayout(l); err != nil {
		panic(err)
	}
}

// AddLayout adds a layout loaded at runtime, such as from a layout file.
// It returns an ErrInvalidLayout or ErrLayoutExists error instead of
// panicking.
func AddLayout(l Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}

	layoutsMu.Lock()
	defer layoutsMu.Unlock()

	if _, exists := layouts[l.Key]; exists {
		return fmt.Errorf("%w: %s", ErrLayoutExists, l.Key)
	}
	layouts[l.Key] = l
	return nil
}

// LookupLayout returns a registered layout by key.
func LookupLayout(key string) (Layout, error) {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()

	l, ok := layouts[key]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %s", ErrUnknownLayout, key)
	}
	return l, nil
}

// Layouts returns all registered layouts sorted by key.
func Layouts() []Layout {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()

	result := make([]Layout, 0, len(layouts))
	for _, l := range layouts {
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// LayoutCount returns the number of registered layouts.
func LayoutCount() int {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()
	return len(layouts)
}

// ClearLayouts removes all registered layouts.
// Primarily useful for testing.
func ClearLayouts() {
	layoutsMu.Lock()
	defer layoutsMu.Unlock()
	layouts = make(map[string]Layout)
}
