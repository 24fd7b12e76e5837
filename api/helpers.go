package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/vocdoni/ballotbox/election"
	"github.com/vocdoni/ballotbox/errors"
	"go.vocdoni.io/dvote/log"
)

// identityFromContext retrieves the authenticated identity from the context
// provided, expected to be the context of a request handled by the
// authenticator middleware.
func identityFromContext(ctx context.Context) (common.Address, bool) {
	identity, ok := ctx.Value(IdentityMetadataKey).(common.Address)
	return identity, ok
}

// identityFromURLParam extracts and validates the identity address from the
// named URL parameter.
func identityFromURLParam(r *http.Request, name string) (common.Address, error) {
	raw := chi.URLParam(r, name)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

// buildLoginResponse creates a JWT token for the given identity address.
// The token is signed with the API secret, following the JWT specification.
// The token is valid for the period specified on jwtExpiration constant.
func (a *API) buildLoginResponse(address common.Address) (*LoginResponse, error) {
	j := jwt.New()
	if err := j.Set("address", address.Hex()); err != nil {
		return nil, err
	}
	if err := j.Set(jwt.ExpirationKey, time.Now().Add(jwtExpiration).UnixNano()); err != nil {
		return nil, err
	}
	lr := LoginResponse{}
	lr.Expirity = time.Now().Add(jwtExpiration)
	jmap, err := j.AsMap(context.Background())
	if err != nil {
		return nil, err
	}
	_, lr.Token, _ = a.auth.Encode(jmap)
	return &lr, nil
}

// writeElectionError translates a ballot box rejection into its API error
// equivalent and writes it to the response.
func writeElectionError(w http.ResponseWriter, err error) {
	switch err {
	case election.ErrNotAdministrator:
		errors.ErrNotAdministrator.Write(w)
	case election.ErrElectionActive:
		errors.ErrElectionActive.Write(w)
	case election.ErrElectionNotActive:
		errors.ErrElectionNotActive.Write(w)
	case election.ErrEmptyPollTitle:
		errors.ErrEmptyPollTitle.Write(w)
	case election.ErrNoChoices:
		errors.ErrNoChoices.Write(w)
	case election.ErrBlankChoiceLabel:
		errors.ErrBlankChoiceLabel.Write(w)
	case election.ErrChoiceIndexOutOfRange:
		errors.ErrChoiceIndexOutOfRange.Write(w)
	case election.ErrEmptyWhitelist:
		errors.ErrEmptyWhitelist.Write(w)
	case election.ErrInvalidIdentity:
		errors.ErrInvalidIdentity.Write(w)
	case election.ErrNoVoters:
		errors.ErrNoVoters.Write(w)
	case election.ErrNotWhitelisted:
		errors.ErrNotWhitelisted.Write(w)
	case election.ErrAlreadyVoted:
		errors.ErrAlreadyVoted.Write(w)
	default:
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
	}
}

// HTTPWriteJSON helper function allows to write a JSON response.
func HTTPWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// HTTPWriteOK helper function allows to write an OK response.
func HTTPWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}
