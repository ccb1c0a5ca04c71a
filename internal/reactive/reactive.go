// Package reactive небольшой граф зависимостей: источники (Signal) и
// производные значения (Computed), которые синхронно пересчитываются при
// изменении объявленных входов.
//
// Граф ацикличен по построению: Computed может зависеть только от уже
// существующих узлов. Значения защищены мьютексом и доступны на чтение из
// любых горутин, запись ожидается из одной горутины-владельца.
package reactive

import "sync"

// Node узел графа, на изменения которого можно подписаться
type Node interface {
	onChange(fn func())
}

type listeners struct {
	mu  sync.Mutex
	fns []func()
}

func (l *listeners) add(fn func()) {
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

func (l *listeners) notify() {
	l.mu.Lock()
	fns := make([]func(), len(l.fns))
	copy(fns, l.fns)
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Signal изменяемый источник значения
type Signal[T any] struct {
	mu        sync.RWMutex
	value     T
	equal     func(a, b T) bool
	listeners listeners
}

// NewSignal создаёт сигнал, изменения которого определяются через ==
func NewSignal[T comparable](initial T) *Signal[T] {
	return &Signal[T]{
		value: initial,
		equal: func(a, b T) bool { return a == b },
	}
}

// NewSignalFunc создаёт сигнал со своей функцией равенства.
// equal == nil означает, что каждый Set считается изменением.
func NewSignalFunc[T any](initial T, equal func(a, b T) bool) *Signal[T] {
	return &Signal[T]{value: initial, equal: equal}
}

func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set записывает значение и оповещает зависимые узлы, если оно изменилось
func (s *Signal[T]) Set(value T) bool {
	s.mu.Lock()
	if s.equal != nil && s.equal(s.value, value) {
		s.mu.Unlock()
		return false
	}
	s.value = value
	s.mu.Unlock()

	s.listeners.notify()
	return true
}

// Update применяет fn к текущему значению
func (s *Signal[T]) Update(fn func(T) T) bool {
	return s.Set(fn(s.Get()))
}

// Subscribe вызывает fn с новым значением после каждого изменения
func (s *Signal[T]) Subscribe(fn func(T)) {
	s.listeners.add(func() { fn(s.Get()) })
}

func (s *Signal[T]) onChange(fn func()) {
	s.listeners.add(fn)
}

// Computed значение, вычисляемое из входных узлов
type Computed[T any] struct {
	mu        sync.RWMutex
	value     T
	compute   func() T
	listeners listeners
}

// NewComputed вычисляет значение сразу и пересчитывает его при изменении deps
func NewComputed[T any](compute func() T, deps ...Node) *Computed[T] {
	c := &Computed[T]{compute: compute}
	c.value = compute()
	for _, dep := range deps {
		dep.onChange(c.recompute)
	}
	return c
}

func (c *Computed[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Subscribe вызывает fn с новым значением после каждого пересчёта
func (c *Computed[T]) Subscribe(fn func(T)) {
	c.listeners.add(func() { fn(c.Get()) })
}

func (c *Computed[T]) recompute() {
	value := c.compute()

	c.mu.Lock()
	c.value = value
	c.mu.Unlock()

	c.listeners.notify()
}

func (c *Computed[T]) onChange(fn func()) {
	c.listeners.add(fn)
}
