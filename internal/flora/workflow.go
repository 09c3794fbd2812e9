package flora

// State enumerates the identification-to-save workflow positions. Identifying
// and Saving are the only in-flight states; while in one of them the driving
// surface disables the triggering control, so no two uploads or saves overlap
// for the same workflow instance.
type State int

const (
	StateIdle State = iota
	StateImageSelected
	StateIdentifying
	StateResultShown
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateImageSelected:
		return "image-selected"
	case StateIdentifying:
		return "identifying"
	case StateResultShown:
		return "result-shown"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// Event enumerates workflow inputs.
type Event int

const (
	EventSelectImage Event = iota
	EventIdentifyStart
	EventIdentifyDone
	EventIdentifyFail
	EventSaveStart
	EventSaveDone
	EventSaveFail
	EventDiscard
)

func (e Event) String() string {
	switch e {
	case EventSelectImage:
		return "select-image"
	case EventIdentifyStart:
		return "identify-start"
	case EventIdentifyDone:
		return "identify-done"
	case EventIdentifyFail:
		return "identify-fail"
	case EventSaveStart:
		return "save-start"
	case EventSaveDone:
		return "save-done"
	case EventSaveFail:
		return "save-fail"
	case EventDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// Transition is the pure state function for the workflow. Save and Discard
// are valid only in ResultShown; re-selecting an image there discards the
// prior result and returns to ImageSelected. A failed save drops back to
// ResultShown (one-shot message, user re-triggers), a failed identify back to
// ImageSelected. Anything else is a WorkflowError.
func Transition(s State, e Event) (State, error) {
	switch s {
	case StateIdle:
		if e == EventSelectImage {
			return StateImageSelected, nil
		}
	case StateImageSelected:
		switch e {
		case EventSelectImage:
			return StateImageSelected, nil
		case EventIdentifyStart:
			return StateIdentifying, nil
		case EventDiscard:
			return StateIdle, nil
		}
	case StateIdentifying:
		switch e {
		case EventIdentifyDone:
			return StateResultShown, nil
		case EventIdentifyFail:
			return StateImageSelected, nil
		}
	case StateResultShown:
		switch e {
		case EventSelectImage:
			return StateImageSelected, nil
		case EventSaveStart:
			return StateSaving, nil
		case EventDiscard:
			return StateIdle, nil
		}
	case StateSaving:
		switch e {
		case EventSaveDone:
			return StateIdle, nil
		case EventSaveFail:
			return StateResultShown, nil
		}
	}
	return s, &WorkflowError{State: s, Event: e}
}

// Workflow holds the current state for one driving surface instance.
type Workflow struct {
	state State
}

func NewWorkflow() *Workflow { return &Workflow{state: StateIdle} }

func (w *Workflow) State() State { return w.state }

// InFlight reports whether a network call is outstanding; the caller keeps
// its triggering affordances disabled while true.
func (w *Workflow) InFlight() bool {
	return w.state == StateIdentifying || w.state == StateSaving
}

// Apply advances the workflow, rejecting events the current state does not
// accept.
func (w *Workflow) Apply(e Event) error {
	next, err := Transition(w.state, e)
	if err != nil {
		return err
	}
	w.state = next
	return nil
}
