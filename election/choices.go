package election

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Choice is one selectable option with its current vote count. The index in
// the configured sequence is its addressing key for the lifetime of that
// configuration.
type Choice struct {
	Label string `json:"label" bson:"label"`
	Votes uint64 `json:"votes" bson:"votes"`
}

// SetChoices replaces the whole ordered choice list, never merges. Vote
// counts of the new entries start at zero. Only the administrator may call
// it, only while the election is inactive, and labels cannot be empty or
// blank.
func (e *Election) SetChoices(caller common.Address, labels []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller.Cmp(e.admin) != 0 {
		return ErrNotAdministrator
	}
	if e.active {
		return ErrElectionActive
	}
	if len(labels) == 0 {
		return ErrNoChoices
	}
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			return ErrBlankChoiceLabel
		}
	}
	choices := make([]Choice, len(labels))
	for i, label := range labels {
		choices[i] = Choice{Label: label}
	}
	e.choices = choices
	e.commit(&Event{
		Kind:      EventChoicesSet,
		Timestamp: e.clock(),
		Epoch:     e.epoch,
		Count:     len(labels),
	})
	return nil
}

// ChoiceCount returns the number of configured choices.
func (e *Election) ChoiceCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.choices)
}

// ChoiceInfo returns the label and current vote count of the choice at
// index.
func (e *Election) ChoiceInfo(index int) (Choice, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if index < 0 || index >= len(e.choices) {
		return Choice{}, ErrChoiceIndexOutOfRange
	}
	return e.choices[index], nil
}

// Choices returns a copy of the configured choice list in index order.
func (e *Election) Choices() []Choice {
	e.mu.RLock()
	defer e.mu.RUnlock()
	choices := make([]Choice, len(e.choices))
	copy(choices, e.choices)
	return choices
}
