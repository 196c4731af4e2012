package camera

import (
	"log"

	"github.com/barnybug/gofsm"
	"github.com/pkg/errors"
)

// States and events of a capture cycle. Each state's entering action runs
// one step and answers with the next event.
const sequence = `
capture:
  start: Idle
  states:
    Idle:
      entering: [idle]
    Starting:
      entering: [start]
    Capturing:
      entering: [snapshot]
    Finishing:
      entering: [distribute]
  transitions:
    Idle->Starting:
    - when: motion
    Capturing:
    - when: snapped
      actions: [record]
    Starting->Capturing:
    - when: started
    Capturing->Finishing:
    - when: recorded
    Starting,Capturing->Idle:
    - when: failed
      actions: [abort]
    Finishing->Idle:
    - when: distributed
      actions: [complete]
`

type event string

func (e event) Match(s string) bool {
	return string(e) == s
}

// Step runs an action and returns the next event, or "" for none.
type Step func() string

type Sequencer struct {
	automata  *gofsm.Automata
	automaton *gofsm.Automaton
	steps     map[string]Step
}

func NewSequencer(steps map[string]Step) (*Sequencer, error) {
	automata, err := gofsm.Load([]byte(sequence))
	if err != nil {
		return nil, errors.Wrap(err, "loading capture sequence")
	}
	return &Sequencer{
		automata:  automata,
		automaton: automata.Automaton["capture"],
		steps:     steps,
	}, nil
}

func (self *Sequencer) State() string {
	return self.automaton.State.Name
}

// Fire feeds an event in and runs actions until the machine settles. The
// states entered are returned in order.
func (self *Sequencer) Fire(trigger string) []string {
	var visited []string
	queue := []event{event(trigger)}
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]
		self.automata.Process(ev)
		for _, change := range self.changes() {
			visited = append(visited, change.New)
		}
		for _, action := range self.actions() {
			step, ok := self.steps[action.Name]
			if !ok {
				log.Println("Unknown capture action:", action.Name)
				continue
			}
			if next := step(); next != "" {
				queue = append(queue, event(next))
			}
		}
	}
	return visited
}

func (self *Sequencer) changes() []gofsm.Change {
	var ret []gofsm.Change
	for {
		select {
		case change := <-self.automata.Changes:
			ret = append(ret, change)
		default:
			return ret
		}
	}
}

func (self *Sequencer) actions() []gofsm.Action {
	var ret []gofsm.Action
	for {
		select {
		case action := <-self.automata.Actions:
			ret = append(ret, action)
		default:
			return ret
		}
	}
}
