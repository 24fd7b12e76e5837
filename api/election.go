package api

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/errors"
)

// electionInfoHandler returns the public summary of the ballot box state.
func (a *API) electionInfoHandler(w http.ResponseWriter, _ *http.Request) {
	HTTPWriteJSON(w, &ElectionInfo{
		Admin:       a.election.Administrator(),
		Title:       a.election.PollTitle(),
		Active:      a.election.Active(),
		Epoch:       a.election.Epoch(),
		StartedAt:   a.election.StartedAt(),
		EndedAt:     a.election.EndedAt(),
		ChoiceCount: a.election.ChoiceCount(),
		VoterCount:  a.election.MemberCount(),
	})
}

// setPollTitleHandler sets the poll title. Administrator only, rejected
// while a voting round is open.
func (a *API) setPollTitleHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &SetTitleRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.election.SetPollTitle(caller, req.Title); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}

// choicesHandler lists the configured choices with their current tallies.
func (a *API) choicesHandler(w http.ResponseWriter, _ *http.Request) {
	HTTPWriteJSON(w, &ChoicesResponse{Choices: a.election.Choices()})
}

// setChoicesHandler replaces the whole choice list. Administrator only,
// rejected while a voting round is open.
func (a *API) setChoicesHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &SetChoicesRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.election.SetChoices(caller, req.Choices); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}

// whitelistHandler lists every identity ever tracked by the whitelist with
// its current membership flag.
func (a *API) whitelistHandler(w http.ResponseWriter, _ *http.Request) {
	HTTPWriteJSON(w, &WhitelistResponse{
		Whitelist:   a.election.Whitelist(),
		ActiveCount: a.election.MemberCount(),
	})
}

// setWhitelistHandler replaces the whole whitelist. Administrator only,
// rejected while a voting round is open. Malformed identities decode to the
// zero address, which the ballot box rejects after its own precondition
// checks.
func (a *API) setWhitelistHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &SetWhitelistRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	identities := make([]common.Address, 0, len(req.Identities))
	for _, raw := range req.Identities {
		identities = append(identities, common.HexToAddress(raw))
	}
	if err := a.election.SetWhitelist(caller, identities); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}

// addToWhitelistHandler adds a single identity to the whitelist.
// Administrator only, rejected while a voting round is open.
func (a *API) addToWhitelistHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &AddWhitelistRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.election.AddToWhitelist(caller, common.HexToAddress(req.Identity)); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}

// removeFromWhitelistHandler removes a single identity from the whitelist.
// Administrator only, rejected while a voting round is open.
func (a *API) removeFromWhitelistHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	identity, err := identityFromURLParam(r, "address")
	if err != nil {
		errors.ErrMalformedURLParam.WithErr(err).Write(w)
		return
	}
	if err := a.election.RemoveFromWhitelist(caller, identity); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}

// startElectionHandler opens a new voting round. Administrator only.
func (a *API) startElectionHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	if err := a.election.Start(caller); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}

// endElectionHandler closes the current voting round. Administrator only.
func (a *API) endElectionHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	if err := a.election.End(caller); err != nil {
		writeElectionError(w, err)
		return
	}
	HTTPWriteOK(w)
}
