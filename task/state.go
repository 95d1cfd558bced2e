package task

type State int

const (
	Idle State = iota
	Pending
	Committed
	Failed
)

func (s State) String() string {

	var str string
	switch s {
	case Idle:
		str = "idle"
	case Pending:
		str = "pending"
	case Committed:
		str = "committed"
	case Failed:
		str = "failed"
	}

	return str
}

var stateTransitionMap = map[State][]State{
	Idle:      {Pending, Failed},
	Pending:   {Committed, Failed},
	Committed: {},
	Failed:    {},
}

func Contains(states []State, state State) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}

	return false
}

func ValidStateTransition(src State, dst State) bool {
	return Contains(stateTransitionMap[src], dst)
}

// Done reports whether s is terminal.
func (s State) Done() bool {
	return s == Committed || s == Failed
}
