package bot

import (
	"context"
	"errors"
	"fmt"

	"lombada-bot/internal/form"
	"lombada-bot/internal/lombada"
	"lombada-bot/pkg/redis"
)

// FormState is what a chat has filled in so far. Page count is kept as typed;
// it is only validated on submit.
type FormState struct {
	Step      string `json:"step"`
	Paper     string `json:"paper,omitempty"`
	Weight    string `json:"weight,omitempty"`
	Pages     string `json:"pages,omitempty"`
	CaseBound bool   `json:"cartonado,omitempty"`
	Milled    bool   `json:"fresado,omitempty"`
	Sewn      bool   `json:"costurado,omitempty"`
}

func (s FormState) Binding() lombada.Binding {
	return lombada.Binding{CaseBound: s.CaseBound, Milled: s.Milled, Sewn: s.Sewn}
}

func (s FormState) Values() form.Values {
	return form.Values{
		Paper:   s.Paper,
		Weight:  s.Weight,
		Pages:   s.Pages,
		Binding: s.Binding(),
	}
}

// Toggle flips one binding checkbox. Unknown names are ignored.
func (s *FormState) Toggle(binding string) bool {
	switch binding {
	case BindingCaseBound:
		s.CaseBound = !s.CaseBound
	case BindingMilled:
		s.Milled = !s.Milled
	case BindingSewn:
		s.Sewn = !s.Sewn
	default:
		return false
	}
	return true
}

type StateStore interface {
	SaveState(ctx context.Context, chatID int64, state any) error
	GetState(ctx context.Context, chatID int64, state any) error
	ClearState(ctx context.Context, chatID int64) error
}

var _ StateStore = (*redis.Client)(nil)

type StateStorage struct {
	store StateStore
}

func NewStateStorage(store StateStore) *StateStorage {
	return &StateStorage{store: store}
}

// Get returns an empty state for chats that have none yet.
func (s *StateStorage) Get(ctx context.Context, chatID int64) (FormState, error) {
	var state FormState
	err := s.store.GetState(ctx, chatID, &state)
	if errors.Is(err, redis.ErrStateNotFound) {
		return FormState{}, nil
	}
	if err != nil {
		return FormState{}, fmt.Errorf("failed to get state: %w", err)
	}
	return state, nil
}

func (s *StateStorage) Save(ctx context.Context, chatID int64, state FormState) error {
	if err := s.store.SaveState(ctx, chatID, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *StateStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.store.ClearState(ctx, chatID); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

// Update loads the state, applies fn and saves the result.
func (s *StateStorage) Update(ctx context.Context, chatID int64, fn func(*FormState)) (FormState, error) {
	state, err := s.Get(ctx, chatID)
	if err != nil {
		return FormState{}, err
	}
	fn(&state)
	if err := s.Save(ctx, chatID, state); err != nil {
		return FormState{}, err
	}
	return state, nil
}
