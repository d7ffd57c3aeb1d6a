package printdoc

import (
	"fmt"

	"github.com/lvillar/carteira"
)

// State is a state of the generated document's output pipeline.
type State string

const (
	StateIdle        State = "idle"
	StateWaiting     State = "waiting"
	StateReady       State = "ready"
	StatePrinting    State = "printing"
	StateDownloading State = "downloading"
	StateClosed      State = "closed"
)

// Event drives a transition of the pipeline.
type Event string

const (
	EventLoad              Event = "load"
	EventResourcesReady    Event = "resourcesReady"
	EventPrint             Event = "print"
	EventDownload          Event = "download"
	EventExportUnavailable Event = "exportUnavailable"
	EventExportFailed      Event = "exportFailed"
	EventDone              Event = "done"
	EventClose             Event = "close"
)

// Transition is one edge of the state machine.
type Transition struct {
	From  State `json:"from"`
	Event Event `json:"event"`
	To    State `json:"to"`
}

// MachineSpec is the transition table shipped to the embedded runtime.
// Auto is the event fired on entering Ready; it is empty when a toolbar hands
// control to the user.
type MachineSpec struct {
	Initial     State        `json:"initial"`
	Auto        Event        `json:"auto,omitempty"`
	Transitions []Transition `json:"transitions"`
}

// Machine builds the transition table for a document in the given mode.
//
// Without a toolbar the pipeline runs unattended: load, wait for resources,
// fire the mode's event on Ready, then close. With a toolbar the Ready state
// waits for button events and finishing an action returns to Ready.
func Machine(mode carteira.Mode, toolbar bool) MachineSpec {
	afterAction := StateClosed
	if toolbar {
		afterAction = StateReady
	}

	spec := MachineSpec{
		Initial: StateIdle,
		Transitions: []Transition{
			{StateIdle, EventLoad, StateWaiting},
			{StateWaiting, EventResourcesReady, StateReady},
			{StateReady, EventPrint, StatePrinting},
			{StateReady, EventDownload, StateDownloading},
			{StateReady, EventClose, StateClosed},
			{StateDownloading, EventExportUnavailable, StatePrinting},
			{StateDownloading, EventExportFailed, StatePrinting},
			{StateDownloading, EventDone, afterAction},
			{StatePrinting, EventDone, afterAction},
		},
	}
	if toolbar {
		spec.Transitions = append(spec.Transitions, Transition{StateWaiting, EventClose, StateClosed})
		return spec
	}
	if mode == carteira.ModeDownload {
		spec.Auto = EventDownload
	} else {
		spec.Auto = EventPrint
	}
	return spec
}

// Next returns the state reached from s on e. Events with no edge from s are
// rejected, mirroring the runtime which ignores them.
func (m MachineSpec) Next(s State, e Event) (State, error) {
	for _, t := range m.Transitions {
		if t.From == s && t.Event == e {
			return t.To, nil
		}
	}
	return s, fmt.Errorf("printdoc: no transition from %s on %s", s, e)
}

// Run replays events from the initial state, firing Auto whenever Ready is
// entered, and returns the visited states.
func (m MachineSpec) Run(events ...Event) ([]State, error) {
	state := m.Initial
	visited := []State{state}
	queue := append([]Event(nil), events...)
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		next, err := m.Next(state, e)
		if err != nil {
			return visited, err
		}
		state = next
		visited = append(visited, state)
		if state == StateReady && m.Auto != "" {
			queue = append([]Event{m.Auto}, queue...)
		}
	}
	return visited, nil
}
