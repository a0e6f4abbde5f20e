package fit

import "sync"

// FitsFunc builds the fit predicate for one set of layout constraints.
type FitsFunc[T any] func(Constraints) func(T) bool

// Container holds an ordered candidate list and re-runs the selection every
// time the host reports new constraints.
type Container[T any] struct {
	mu         sync.RWMutex
	candidates []T
	fits       FitsFunc[T]
	current    int
	onChange   []func(T)
}

// NewContainer creates a Container. Until the first Relayout the last
// candidate is current.
func NewContainer[T any](candidates []T, fits FitsFunc[T]) *Container[T] {
	return &Container[T]{
		candidates: append([]T(nil), candidates...),
		fits:       fits,
		current:    len(candidates) - 1,
	}
}

// OnChange registers fn to be called after a Relayout that picked a
// different candidate. Callbacks run synchronously on the calling goroutine.
func (c *Container[T]) OnChange(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Relayout selects again under cons. It returns the chosen candidate and
// whether it differs from the previous choice.
func (c *Container[T]) Relayout(cons Constraints) (T, bool) {
	c.mu.Lock()
	idx := SelectIndex(c.candidates, c.fits(cons))
	changed := idx != c.current
	c.current = idx
	chosen := c.at(idx)
	var listeners []func(T)
	if changed {
		listeners = append(listeners, c.onChange...)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(chosen)
	}
	return chosen, changed
}

// Current returns the candidate chosen by the last Relayout.
func (c *Container[T]) Current() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.at(c.current)
}

// Index returns the position of the current candidate, or -1 when empty.
func (c *Container[T]) Index() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Container[T]) at(i int) T {
	var zero T
	if i < 0 {
		return zero
	}
	return c.candidates[i]
}

// Titled is a navigation title container together with the content it
// titles.
type Titled struct {
	*Container[string]
	content func()
}

// NewTitled creates a Titled over rendered title candidates. A nil content
// is allowed.
func NewTitled(candidates []string, content func()) *Titled {
	return &Titled{Container: NewContainer(candidates, WidthFits), content: content}
}

// Content runs the titled content.
func (t *Titled) Content() {
	if t.content != nil {
		t.content()
	}
}
