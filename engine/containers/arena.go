package containers

import "fmt"

// Handle addresses a slot of an Arena. Generation 0 is never issued, so the zero Handle is always invalid.
type Handle struct {
	Index      uint32
	Generation uint32
}

func (h Handle) IsZero() bool {
	return h.Generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d/%d", h.Index, h.Generation)
}

type arenaSlot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena stores values in reusable slots. A removed slot bumps its generation,
// so handles taken before the removal stop resolving.
type Arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	count int
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]arenaSlot[T], 0, capacity),
	}
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = value
		s.occupied = true
		a.count++
		return Handle{Index: idx, Generation: s.generation}
	}
	a.slots = append(a.slots, arenaSlot[T]{value: value, generation: 1, occupied: true})
	a.count++
	return Handle{Index: uint32(len(a.slots) - 1), Generation: 1}
}

func (a *Arena[T]) slot(h Handle) (*arenaSlot[T], bool) {
	if h.IsZero() || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return nil, false
	}
	return s, true
}

// Get returns the value behind h, or false when h is unknown or stale.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	s, ok := a.slot(h)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.slot(h)
	return ok
}

// Remove frees the slot of h and returns the value it held.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	s, ok := a.slot(h)
	if !ok {
		return zero, false
	}
	value := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, h.Index)
	a.count--
	return value, true
}

func (a *Arena[T]) Len() int {
	return a.count
}

// Each visits live values in slot order. Returning false stops the walk.
func (a *Arena[T]) Each(fn func(h Handle, value T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.occupied {
			continue
		}
		if !fn(Handle{Index: uint32(i), Generation: s.generation}, s.value) {
			return
		}
	}
}

// Clear removes every value. Outstanding handles become stale.
func (a *Arena[T]) Clear() {
	var zero T
	a.free = a.free[:0]
	for i := range a.slots {
		s := &a.slots[i]
		if s.occupied {
			s.generation++
			if s.generation == 0 {
				s.generation = 1
			}
		}
		s.value = zero
		s.occupied = false
		a.free = append(a.free, uint32(len(a.slots)-1-i))
	}
	a.count = 0
}
