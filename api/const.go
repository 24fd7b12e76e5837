package api

import "time"

// ChallengeExpiration is the duration of a login challenge before it is
// invalidated
var ChallengeExpiration = 5 * time.Minute

const (
	// ChallengeLength is the length of the challenge nonce in bytes
	ChallengeLength = 16
	// maxPendingChallenges is the maximum number of outstanding login
	// challenges kept in memory, oldest evicted first
	maxPendingChallenges = 1024
)
