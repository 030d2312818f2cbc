package services

// Actor is anything the engine can hand a turn to
type Actor interface {
	Act()
}

// Scheduler is a round-robin queue of actors. The actor returned by Next is
// requeued at the back on the following call unless it was removed in between.
type Scheduler struct {
	queue   []Actor
	current Actor
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add appends an actor to the queue
func (s *Scheduler) Add(a Actor) {
	s.queue = append(s.queue, a)
}

// Remove takes an actor out of rotation. Removing the current actor means it
// is not requeued.
func (s *Scheduler) Remove(a Actor) bool {
	if s.current == a {
		s.current = nil
		return true
	}
	for i, queued := range s.queue {
		if queued == a {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether a is queued or currently acting
func (s *Scheduler) Contains(a Actor) bool {
	if s.current == a {
		return true
	}
	for _, queued := range s.queue {
		if queued == a {
			return true
		}
	}
	return false
}

// Next returns the next actor, or nil when there is none
func (s *Scheduler) Next() Actor {
	if s.current != nil {
		s.queue = append(s.queue, s.current)
		s.current = nil
	}
	if len(s.queue) == 0 {
		return nil
	}
	s.current = s.queue[0]
	s.queue = s.queue[1:]
	return s.current
}

// Current is the actor whose turn it is
func (s *Scheduler) Current() Actor {
	return s.current
}

// Len counts the actors in rotation
func (s *Scheduler) Len() int {
	n := len(s.queue)
	if s.current != nil {
		n++
	}
	return n
}

func (s *Scheduler) Clear() {
	s.queue = nil
	s.current = nil
}

// EngineState is either running or locked
type EngineState int

const (
	EngineLocked EngineState = iota
	EngineRunning
)

func (s EngineState) String() string {
	if s == EngineRunning {
		return "running"
	}
	return "locked"
}

// DefaultMaxTurnsPerUnlock bounds the turns one unlock may run
const DefaultMaxTurnsPerUnlock = 100000

// Engine drives the scheduler. It starts locked; every Lock must be matched
// by an Unlock before actors run again.
type Engine struct {
	scheduler *Scheduler
	lock      int
	running   bool
	turns     int

	maxTurns int
}

// NewEngine creates a new locked engine over s
func NewEngine(s *Scheduler, maxTurnsPerUnlock int) *Engine {
	if maxTurnsPerUnlock <= 0 {
		maxTurnsPerUnlock = DefaultMaxTurnsPerUnlock
	}
	return &Engine{scheduler: s, lock: 1, maxTurns: maxTurnsPerUnlock}
}

// Start runs actors until one locks the engine
func (en *Engine) Start() error {
	return en.Unlock()
}

func (en *Engine) Lock() {
	en.lock++
}

// Unlock releases one lock. When none remain, actors are dispatched in turn
// until one of them locks the engine again. Called from inside an actor's
// turn it only releases the lock; the loop already in progress carries on.
func (en *Engine) Unlock() error {
	if en.lock == 0 {
		return ErrEngineNotLocked
	}
	en.lock--
	if en.running {
		return nil
	}

	en.running = true
	defer func() { en.running = false }()

	dispatched := 0
	for en.lock == 0 {
		if dispatched >= en.maxTurns {
			en.lock++
			return ErrTurnBudgetExhausted
		}
		actor := en.scheduler.Next()
		if actor == nil {
			en.lock++
			return nil
		}
		en.turns++
		dispatched++
		actor.Act()
	}
	return nil
}

// Step hands exactly one turn to the next actor regardless of the lock.
// It reports false when there is nobody to run.
func (en *Engine) Step() (Actor, bool) {
	actor := en.scheduler.Next()
	if actor == nil {
		return nil, false
	}
	en.turns++
	actor.Act()
	return actor, true
}

func (en *Engine) State() EngineState {
	if en.lock > 0 {
		return EngineLocked
	}
	return EngineRunning
}

// Turns counts every act dispatched so far
func (en *Engine) Turns() int {
	return en.turns
}

func (en *Engine) Scheduler() *Scheduler {
	return en.scheduler
}
