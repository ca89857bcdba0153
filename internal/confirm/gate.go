// Package confirm decides whether proposed output relocations are applied,
// asking the operator when the policy for that kind of change says so.
package confirm

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/lesswatch/internal/mirror"
)

// DefaultPromptInterval is the window in which a second prompt reuses the
// previous answer. Moving a directory produces one event per file.
const DefaultPromptInterval = time.Second

// Policy is the stored decision for one kind of relocation.
type Policy struct {
	Do     bool `yaml:"do"`
	Prompt bool `yaml:"prompt"`
}

// State holds the policy per relocation kind.
type State struct {
	Move   Policy `yaml:"move"`
	Copy   Policy `yaml:"copy"`
	Delete Policy `yaml:"delete"`
}

// DefaultState applies relocations and asks first for every kind.
func DefaultState() State {
	p := Policy{Do: true, Prompt: true}
	return State{Move: p, Copy: p, Delete: p}
}

// HasDefaults reports whether s equals DefaultState.
func (s State) HasDefaults() bool { return s == DefaultState() }

// Reset restores the defaults.
func (s *State) Reset() { *s = DefaultState() }

func (s *State) policy(kind mirror.Kind) *Policy {
	switch kind {
	case mirror.KindMove:
		return &s.Move
	case mirror.KindCopy:
		return &s.Copy
	default:
		return &s.Delete
	}
}

// Answer is the operator's response to a prompt.
type Answer struct {
	Yes bool
	// Remember stops future prompts for this kind and keeps Yes as the policy.
	Remember bool
}

// Prompter asks the operator about one relocation.
type Prompter interface {
	Ask(ctx context.Context, kind mirror.Kind, name string) (Answer, error)
}

// Gate applies the stored policy and prompts when required. The remembered
// answer is shared by all kinds: a move confirmed within the prompt interval
// also confirms a following copy or delete.
type Gate struct {
	mu         sync.Mutex
	state      State
	prompter   Prompter
	interval   time.Duration
	now        func() time.Time
	lastPrompt time.Time
	last       bool
}

// NewGate returns a gate starting from state. A nil prompter makes the gate
// non-interactive: the stored Do flag decides.
func NewGate(state State, prompter Prompter, interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultPromptInterval
	}
	return &Gate{state: state, prompter: prompter, interval: interval, now: time.Now}
}

// Confirm reports whether relocations of kind for the file name should go
// ahead. Within the prompt interval the previous answer is reused without
// asking. The outcome becomes the stored Do flag for kind.
func (g *Gate) Confirm(ctx context.Context, kind mirror.Kind, name string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.state.policy(kind)
	result := p.Do
	if p.Prompt && g.prompter != nil {
		result = g.last
		if g.lastPrompt.IsZero() || g.now().Sub(g.lastPrompt) > g.interval {
			ans, err := g.prompter.Ask(ctx, kind, name)
			if err != nil {
				return false, err
			}
			result = ans.Yes
			if ans.Remember {
				p.Prompt = false
			}
		}
	}
	g.lastPrompt = g.now()
	g.last = result
	p.Do = result
	return result, nil
}

// State returns a copy of the current policies.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reset restores default policies and forgets the last answer.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Reset()
	g.lastPrompt = time.Time{}
	g.last = false
}
