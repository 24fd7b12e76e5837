// Package api provides the HTTP API of the ballot box. Identities
// authenticate by signing a single use challenge with their Ethereum key and
// get a JWT token back. Election mutations require a token, reads are
// public.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vocdoni/ballotbox/db"
	"github.com/vocdoni/ballotbox/election"
	"github.com/vocdoni/ballotbox/validator"
	"go.vocdoni.io/dvote/log"
)

const jwtExpiration = 360 * time.Hour // 15 days

// Config holds the dependencies of the API HTTP server.
type Config struct {
	Host string
	Port int
	// Secret signs the JWT tokens.
	Secret string
	// Election is the ballot box state machine the API exposes.
	Election *election.Election
	// Store serves the committed event journal. Required for the events
	// endpoint.
	Store db.Store
}

// API type represents the API HTTP server with JWT authentication
// capabilities.
type API struct {
	election   *election.Election
	store      db.Store
	auth       *jwtauth.JWTAuth
	validator  *validator.Validator
	challenges *expirable.LRU[string, string]
	host       string
	port       int
	router     *chi.Mux
}

// New creates a new API HTTP server. It does not start the server. Use
// Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		election:   conf.Election,
		store:      conf.Store,
		auth:       jwtauth.New("HS256", []byte(conf.Secret), nil),
		validator:  validator.New(),
		challenges: expirable.NewLRU[string, string](maxPendingChallenges, nil, ChallengeExpiration),
		host:       conf.Host,
		port:       conf.Port,
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// protected routes
	r.Group(func(r chi.Router) {
		// seek, verify and validate JWT tokens
		r.Use(jwtauth.Verifier(a.auth))
		// handle valid JWT tokens
		r.Use(a.authenticator)
		// refresh the token
		log.Infow("new route", "method", "POST", "path", authRefresTokenEndpoint)
		r.Post(authRefresTokenEndpoint, a.refreshTokenHandler)
		// set the poll title
		log.Infow("new route", "method", "PUT", "path", electionTitleEndpoint)
		r.Put(electionTitleEndpoint, a.setPollTitleHandler)
		// replace the choice list
		log.Infow("new route", "method", "PUT", "path", electionChoicesEndpoint)
		r.Put(electionChoicesEndpoint, a.setChoicesHandler)
		// replace the whole whitelist
		log.Infow("new route", "method", "PUT", "path", electionWhitelistEndpoint)
		r.Put(electionWhitelistEndpoint, a.setWhitelistHandler)
		// add a single identity to the whitelist
		log.Infow("new route", "method", "POST", "path", electionWhitelistEndpoint)
		r.Post(electionWhitelistEndpoint, a.addToWhitelistHandler)
		// remove a single identity from the whitelist
		log.Infow("new route", "method", "DELETE", "path", electionWhitelistAddressEndpoint)
		r.Delete(electionWhitelistAddressEndpoint, a.removeFromWhitelistHandler)
		// open a new voting round
		log.Infow("new route", "method", "POST", "path", electionStartEndpoint)
		r.Post(electionStartEndpoint, a.startElectionHandler)
		// close the current voting round
		log.Infow("new route", "method", "POST", "path", electionEndEndpoint)
		r.Post(electionEndEndpoint, a.endElectionHandler)
		// cast a vote
		log.Infow("new route", "method", "POST", "path", electionVoteEndpoint)
		r.Post(electionVoteEndpoint, a.voteHandler)
	})

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(".")); err != nil {
				log.Warnw("failed to write ping response", "error", err)
			}
		})
		// request a login challenge
		log.Infow("new route", "method", "POST", "path", authChallengeEndpoint)
		r.With(a.validateInputModel(ChallengeRequest{}), a.InputValidator).
			Post(authChallengeEndpoint, a.authChallengeHandler)
		// login with a signed challenge
		log.Infow("new route", "method", "POST", "path", authLoginEndpoint)
		r.With(a.validateInputModel(LoginRequest{}), a.InputValidator).
			Post(authLoginEndpoint, a.authLoginHandler)
		// get the election summary
		log.Infow("new route", "method", "GET", "path", electionEndpoint)
		r.Get(electionEndpoint, a.electionInfoHandler)
		// list the choices with their tallies
		log.Infow("new route", "method", "GET", "path", electionChoicesEndpoint)
		r.Get(electionChoicesEndpoint, a.choicesHandler)
		// list the whitelist
		log.Infow("new route", "method", "GET", "path", electionWhitelistEndpoint)
		r.Get(electionWhitelistEndpoint, a.whitelistHandler)
		// get the voting status of an identity
		log.Infow("new route", "method", "GET", "path", electionVoterEndpoint)
		r.Get(electionVoterEndpoint, a.voterStatusHandler)
		// get the winner projection
		log.Infow("new route", "method", "GET", "path", electionWinnerEndpoint)
		r.Get(electionWinnerEndpoint, a.winnerHandler)
		// page through the event journal
		log.Infow("new route", "method", "GET", "path", electionEventsEndpoint)
		r.Get(electionEventsEndpoint, a.electionEventsHandler)
	})
	a.router = r
	return r
}
