package diag

// MaxDepth bounds the capacity of any Stack.
const MaxDepth = 32

// Stack is a last-in-first-out stack of frames with a capacity fixed at
// construction. Push and Pop never allocate.
type Stack struct {
	frames [MaxDepth]Frame
	limit  int
	depth  int
}

// NewStack returns a stack holding at most capacity frames. capacity is
// clamped to [1, MaxDepth].
func NewStack(capacity int) *Stack {
	s := &Stack{}
	s.Init(capacity)
	return s
}

// Init empties s and sets its capacity.
func (s *Stack) Init(capacity int) {
	switch {
	case capacity < 1:
		capacity = 1
	case capacity > MaxDepth:
		capacity = MaxDepth
	}
	s.limit, s.depth = capacity, 0
}

// Push pushes f, reporting false if the stack is full.
func (s *Stack) Push(f Frame) bool {
	if s.depth >= s.limit {
		return false
	}
	s.frames[s.depth] = f
	s.depth++
	return true
}

// Pop removes the innermost frame.
func (s *Stack) Pop() {
	if s.depth == 0 {
		panic("diag: pop of empty context stack")
	}
	s.depth--
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int {
	return s.depth
}

// Cap returns the stack's capacity.
func (s *Stack) Cap() int {
	return s.limit
}

// Truncate pops frames until at most depth remain.
func (s *Stack) Truncate(depth int) {
	if depth < s.depth {
		s.depth = depth
	}
}

// Reset pops every frame.
func (s *Stack) Reset() {
	s.depth = 0
}

// Top returns the innermost frame.
func (s *Stack) Top() (Frame, bool) {
	if s.depth == 0 {
		return Frame{}, false
	}
	return s.frames[s.depth-1], true
}

// Frames returns the current frames, outermost first. The slice aliases the
// stack and is invalidated by the next Push.
func (s *Stack) Frames() []Frame {
	return s.frames[:s.depth]
}
