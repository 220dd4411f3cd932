package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a Store when no state exists for an id.
var ErrNotFound = errors.New("wizard: state not found")

// Store persists wizard instances between requests.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}

// Engine drives one kind of wizard on top of a Store.
type Engine struct {
	kind  Kind
	store Store
	now   func() time.Time
	newID func() string
}

// NewEngine builds an Engine for kind.
func NewEngine(kind Kind, store Store) *Engine {
	return &Engine{
		kind:  kind,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Kind returns the wizard kind the engine drives.
func (e *Engine) Kind() Kind {
	return e.kind
}

// Start returns the instance to use for StepOne: the existing one when id
// resolves to a matching instance, otherwise a fresh one.
func (e *Engine) Start(ctx context.Context, id, owner string) (*State, error) {
	if id != "" {
		state, err := e.store.Get(ctx, id)
		switch {
		case err == nil && state.Kind == e.kind && state.OwnedBy(owner):
			return state, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}
	return NewState(e.newID(), e.kind, owner, e.now()), nil
}

// Resume loads the instance for a step after StepOne. Any missing, foreign or
// incomplete instance yields ErrOutOfOrder.
func (e *Engine) Resume(ctx context.Context, id, owner string, step Step) (*State, error) {
	if id == "" {
		return nil, ErrOutOfOrder
	}
	state, err := e.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrOutOfOrder
		}
		return nil, err
	}
	if state.Kind != e.kind || !state.OwnedBy(owner) || !state.CanEnter(step) {
		return nil, ErrOutOfOrder
	}
	return state, nil
}

// Advance stages payload as the result of step and persists the instance.
func (e *Engine) Advance(ctx context.Context, state *State, step Step, payload interface{}) error {
	if err := state.Complete(step, payload, e.now()); err != nil {
		return err
	}
	return e.store.Save(ctx, state)
}

// Finish removes the instance after a successful commit.
func (e *Engine) Finish(ctx context.Context, state *State) error {
	return e.store.Delete(ctx, state.ID)
}

// Discard drops the instance stored under id, if any.
func (e *Engine) Discard(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return e.store.Delete(ctx, id)
}
