package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/errors"
	"go.vocdoni.io/dvote/crypto/ethereum"
	"go.vocdoni.io/dvote/util"
)

// challengeMessage builds the text a client must sign to prove control of an
// address. The nonce makes every challenge single use.
func challengeMessage(address common.Address, nonce string) string {
	return fmt.Sprintf("ballotbox login challenge for %s: %s", strings.ToLower(address.Hex()), nonce)
}

// challengeKey is the pending challenge cache key for an address.
func challengeKey(address common.Address) string {
	return strings.ToLower(address.Hex())
}

// authChallengeHandler issues a fresh login challenge for the requested
// address. The challenge must be signed with the address private key and
// sent to the login endpoint before it expires. Requesting a new challenge
// replaces any pending one for the same address.
func (a *API) authChallengeHandler(w http.ResponseWriter, r *http.Request) {
	req := &ChallengeRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if !common.IsHexAddress(req.Address) {
		errors.ErrInvalidIdentity.Withf("malformed address %q", req.Address).Write(w)
		return
	}
	address := common.HexToAddress(req.Address)
	challenge := challengeMessage(address, util.RandomHex(ChallengeLength))
	a.challenges.Add(challengeKey(address), challenge)
	HTTPWriteJSON(w, &ChallengeResponse{
		Challenge:  challenge,
		Expiration: time.Now().Add(ChallengeExpiration),
	})
}

// authLoginHandler verifies the signature over a pending challenge and
// returns a JWT token for the recovered identity. The challenge is consumed
// on success, so it cannot be replayed.
func (a *API) authLoginHandler(w http.ResponseWriter, r *http.Request) {
	req := &LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if !common.IsHexAddress(req.Address) {
		errors.ErrInvalidIdentity.Withf("malformed address %q", req.Address).Write(w)
		return
	}
	address := common.HexToAddress(req.Address)
	// the challenge must be the pending one for the address
	challenge, ok := a.challenges.Get(challengeKey(address))
	if !ok || challenge != req.Challenge {
		errors.ErrChallengeNotValid.Write(w)
		return
	}
	// recover the signer address from the signature and check it matches
	if len(req.Signature) == 0 {
		errors.ErrInvalidSignature.Withf("empty signature").Write(w)
		return
	}
	signer, err := ethereum.AddrFromSignature([]byte(req.Challenge), req.Signature)
	if err != nil {
		errors.ErrInvalidSignature.WithErr(err).Write(w)
		return
	}
	if signer != address {
		errors.ErrInvalidSignature.Withf("challenge signed by %s", signer.Hex()).Write(w)
		return
	}
	// consume the challenge and issue the token
	a.challenges.Remove(challengeKey(address))
	res, err := a.buildLoginResponse(address)
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	// send the token back to the user
	HTTPWriteJSON(w, res)
}

// refreshTokenHandler issues a fresh JWT token for the authenticated
// identity.
func (a *API) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	// get the identity from the request context
	identity, ok := identityFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	// generate a new token with the identity address as the subject
	res, err := a.buildLoginResponse(identity)
	if err != nil {
		errors.ErrGenericInternalServerError.Write(w)
		return
	}
	// send the token back to the user
	HTTPWriteJSON(w, res)
}
