package api

const (
	// auth routes

	// POST /auth/challenge to request a single use login challenge
	authChallengeEndpoint = "/auth/challenge"
	// POST /auth/login to exchange a signed challenge for a JWT token
	authLoginEndpoint = "/auth/login"
	// POST /auth/refresh to refresh the JWT token
	authRefresTokenEndpoint = "/auth/refresh"

	// election routes

	// GET /election to get the election summary
	electionEndpoint = "/election"
	// PUT /election/title to set the poll title
	electionTitleEndpoint = "/election/title"
	// GET /election/choices to list the choices with their current tallies
	// PUT /election/choices to replace the choice list
	electionChoicesEndpoint = "/election/choices"
	// GET /election/whitelist to list every tracked identity
	// PUT /election/whitelist to replace the whole whitelist
	// POST /election/whitelist to add a single identity
	electionWhitelistEndpoint = "/election/whitelist"
	// DELETE /election/whitelist/{address} to remove a single identity
	electionWhitelistAddressEndpoint = "/election/whitelist/{address}"
	// POST /election/start to open a new voting round
	electionStartEndpoint = "/election/start"
	// POST /election/end to close the current voting round
	electionEndEndpoint = "/election/end"
	// POST /election/vote to cast a vote as the authenticated identity
	electionVoteEndpoint = "/election/vote"
	// GET /election/voters/{address} to get the voting status of an identity
	electionVoterEndpoint = "/election/voters/{address}"
	// GET /election/winner to get the current winner projection
	electionWinnerEndpoint = "/election/winner"
	// GET /election/events to page through the committed event journal
	electionEventsEndpoint = "/election/events"

	// GET /ping to check the server is up
	pingEndpoint = "/ping"
)
