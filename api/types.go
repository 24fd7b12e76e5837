package api

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/election"
	"github.com/vocdoni/ballotbox/internal"
)

// ChallengeRequest is the request to get a login challenge for an address.
type ChallengeRequest struct {
	Address string `json:"address" validate:"required,ethaddr"`
}

// ChallengeResponse contains the challenge text the client must sign and the
// time at which the challenge expires.
type ChallengeResponse struct {
	Challenge  string    `json:"challenge"`
	Expiration time.Time `json:"expiration"`
}

// LoginRequest is the request to exchange a signed challenge for a JWT token.
// The signature is the Ethereum signature of the challenge text, hex encoded.
type LoginRequest struct {
	Address   string            `json:"address" validate:"required,ethaddr"`
	Challenge string            `json:"challenge" validate:"required"`
	Signature internal.HexBytes `json:"signature" validate:"required"`
}

// LoginResponse represents the response to a successful login request.
type LoginResponse struct {
	// JWT authentication token
	Token string `json:"token"`

	// Token expiration time
	Expirity time.Time `json:"expirity"`
}

// ElectionInfo is the public summary of the ballot box state. StartedAt and
// EndedAt are zero until the first round is opened or closed.
type ElectionInfo struct {
	Admin       common.Address `json:"admin"`
	Title       string         `json:"title"`
	Active      bool           `json:"active"`
	Epoch       uint64         `json:"epoch"`
	StartedAt   time.Time      `json:"startedAt"`
	EndedAt     time.Time      `json:"endedAt"`
	ChoiceCount int            `json:"choiceCount"`
	VoterCount  int            `json:"voterCount"`
}

// SetTitleRequest is the request to set the poll title.
type SetTitleRequest struct {
	Title string `json:"title"`
}

// SetChoicesRequest is the request to replace the whole choice list.
type SetChoicesRequest struct {
	Choices []string `json:"choices"`
}

// ChoicesResponse lists the configured choices with their current tallies,
// in index order.
type ChoicesResponse struct {
	Choices []election.Choice `json:"choices"`
}

// SetWhitelistRequest is the request to replace the whole whitelist.
// Identities are hex encoded addresses.
type SetWhitelistRequest struct {
	Identities []string `json:"identities"`
}

// AddWhitelistRequest is the request to add a single identity to the
// whitelist.
type AddWhitelistRequest struct {
	Identity string `json:"identity"`
}

// WhitelistResponse lists every identity ever tracked by the whitelist with
// its current membership flag. ActiveCount counts only current members.
type WhitelistResponse struct {
	Whitelist   []election.WhitelistEntry `json:"whitelist"`
	ActiveCount int                       `json:"activeCount"`
}

// VoteRequest is the request to cast a vote for the choice at the given
// index. The voter is the authenticated identity.
type VoteRequest struct {
	ChoiceIndex int `json:"choiceIndex"`
}

// VoterStatusResponse is the current round voting status of one identity.
type VoterStatusResponse struct {
	Identity common.Address `json:"identity"`
	election.VoterStatus
}

// EventsResponse is one page of the committed event journal. LastSeq is the
// sequence number of the newest event in the journal, so clients know
// whether they are caught up.
type EventsResponse struct {
	Events  []*election.Event `json:"events"`
	LastSeq uint64            `json:"lastSeq"`
}
