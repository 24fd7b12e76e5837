package api

import (
	"encoding/json"
	"net/http"

	"github.com/vocdoni/ballotbox/errors"
)

// voteHandler casts a vote for the authenticated identity. The identity must
// be whitelisted and can vote at most once per voting round.
func (a *API) voteHandler(w http.ResponseWriter, r *http.Request) {
	voter, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &VoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.election.Vote(voter, req.ChoiceIndex); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}

// voterStatusHandler returns the current round voting status of the identity
// in the URL.
func (a *API) voterStatusHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromURLParam(r, "address")
	if err != nil {
		errors.ErrMalformedURLParam.WithErr(err).Write(w)
		return
	}
	HTTPWriteJSON(w, &VoterStatusResponse{
		Identity:    identity,
		VoterStatus: a.election.VoterStatus(identity),
	})
}

// winnerHandler returns the winner projection over the current tallies. It
// works in any lifecycle state, for live or final results.
func (a *API) winnerHandler(w http.ResponseWriter, _ *http.Request) {
	HTTPWriteJSON(w, a.election.Winner())
}
