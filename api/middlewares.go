package api

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/vocdoni/ballotbox/errors"
)

// MetadataKey is a type to define the key for the metadata stored in the
// context.
type MetadataKey string

// IdentityMetadataKey is the key used to store the authenticated identity in
// the context.
const IdentityMetadataKey MetadataKey = "identity"

// authenticator is a middleware that validates the JWT token of the request,
// decodes the identity address from its claims and adds it to the request
// context for the handlers.
func (a *API) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			errors.ErrUnauthorized.Write(w)
			return
		}
		if token == nil || jwt.Validate(token, jwt.WithRequiredClaim("address")) != nil {
			errors.ErrUnauthorized.Withf("address claim not found in JWT token").Write(w)
			return
		}
		// retrieve the `address` claim and decode it into an identity
		rawAddress, ok := claims["address"].(string)
		if !ok || !common.IsHexAddress(rawAddress) {
			errors.ErrUnauthorized.Withf("invalid address claim in JWT token").Write(w)
			return
		}
		// add the identity to the context
		ctx := context.WithValue(r.Context(), IdentityMetadataKey, common.HexToAddress(rawAddress))
		// token is authenticated, pass it through with the new context with
		// the identity
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// InputValidator is a middleware that validates the request body against the
// model stored in the context. It uses the validator package to validate the
// model.
func (a *API) InputValidator(next http.Handler) http.Handler {
	return a.validator.InputValidator(next)
}

// validateInputModel is a middleware that adds the model to the request
// context for validation by the InputValidator middleware.
func (a *API) validateInputModel(model interface{}) func(http.Handler) http.Handler {
	return a.validator.AddModelMiddleware(model)
}
