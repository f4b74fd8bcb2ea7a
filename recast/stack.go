package recast

type Stack[T any] interface {
	Pop() T
	Push(value T)
	Len() int
	Empty() bool
	Clear()
}

func NewStack[T any](capacity int) Stack[T] {
	return &stack[T]{data: make([]T, 0, capacity)}
}

type stack[T any] struct {
	data []T
}

func (s *stack[T]) Clear() {
	s.data = s.data[:0]
}

func (s *stack[T]) Pop() T {
	e := s.data[s.Len()-1]
	s.data = s.data[:s.Len()-1]
	return e
}

func (s *stack[T]) Push(value T) {
	s.data = append(s.data, value)
}

func (s *stack[T]) Len() int {
	return len(s.data)
}

func (s *stack[T]) Empty() bool {
	return s.Len() == 0
}
