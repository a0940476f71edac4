package importer

import (
	"errors"
	"fmt"
)

// State is a step of the import wizard.
type State int

const (
	StateAwaitingFile State = iota
	StateAwaitingMapping
	StateAwaitingConfirmation
	StateImporting
	StateDone
)

var stateNames = [...]string{
	StateAwaitingFile:         "AWAITING_FILE",
	StateAwaitingMapping:      "AWAITING_MAPPING",
	StateAwaitingConfirmation: "AWAITING_CONFIRMATION",
	StateImporting:            "IMPORTING",
	StateDone:                 "DONE",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}

	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the state only accepts a reset.
func (s State) Terminal() bool {
	return s == StateDone
}

// Event drives a transition between states.
type Event int

const (
	EventFileParsed Event = iota
	EventMappingComplete
	EventEditMapping
	EventConfirm
	EventPersisted
	EventPersistFailed
	EventReset
	EventCancel
)

var eventNames = [...]string{
	EventFileParsed:      "fileParsed",
	EventMappingComplete: "mappingComplete",
	EventEditMapping:     "editMapping",
	EventConfirm:         "confirm",
	EventPersisted:       "persisted",
	EventPersistFailed:   "persistFailed",
	EventReset:           "reset",
	EventCancel:          "cancel",
}

func (e Event) String() string {
	if int(e) >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}

	return fmt.Sprintf("Event(%d)", int(e))
}

var ErrIllegalTransition = errors.New("illegal transition")

// TransitionError reports an event that is not accepted in the current state.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Event, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

type transition struct {
	from  State
	event Event
}

var transitions = map[transition]State{
	{StateAwaitingFile, EventFileParsed}:          StateAwaitingMapping,
	{StateAwaitingMapping, EventMappingComplete}:  StateAwaitingConfirmation,
	{StateAwaitingConfirmation, EventEditMapping}: StateAwaitingMapping,
	{StateAwaitingConfirmation, EventConfirm}:     StateImporting,
	{StateImporting, EventPersisted}:              StateDone,
	{StateImporting, EventPersistFailed}:          StateAwaitingConfirmation,
	{StateDone, EventReset}:                       StateAwaitingFile,
}

// Next returns the state reached from s on e.
func Next(s State, e Event) (State, error) {
	if e == EventCancel {
		if s.Terminal() {
			return s, &TransitionError{From: s, Event: e}
		}

		return StateAwaitingFile, nil
	}

	to, ok := transitions[transition{s, e}]
	if !ok {
		return s, &TransitionError{From: s, Event: e}
	}

	return to, nil
}
