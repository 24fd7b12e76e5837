package election

import "errors"

// Errors returned by the election state machine. Every rejection is raised
// before any state mutation and is a deterministic function of the current
// state and the input, so an identical retry with no intervening state
// change fails identically.
var (
	ErrNotAdministrator         = errors.New("caller is not the administrator")
	ErrElectionActive           = errors.New("election is active")
	ErrElectionNotActive        = errors.New("election is not active")
	ErrEmptyPollTitle           = errors.New("poll title is empty")
	ErrNoChoices                = errors.New("no choices provided")
	ErrBlankChoiceLabel         = errors.New("choice label is blank")
	ErrChoiceIndexOutOfRange    = errors.New("choice index out of range")
	ErrEmptyWhitelist           = errors.New("whitelist is empty")
	ErrInvalidIdentity          = errors.New("invalid identity address")
	ErrNoVoters                 = errors.New("no whitelisted voters")
	ErrNotWhitelisted           = errors.New("identity is not whitelisted")
	ErrAlreadyVoted             = errors.New("identity already voted in this election")
	ErrWhitelistIndexOutOfRange = errors.New("whitelist index out of range")
)
