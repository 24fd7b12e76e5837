package db

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vocdoni/ballotbox/election"
)

var collectionsValidators = map[string]bson.M{
	"events": eventsCollectionValidator,
}

// eventsCollectionValidator guards the journal against malformed writes:
// every event document must carry its sequence number, a known kind, a
// timestamp and the epoch it was committed under.
var eventsCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "kind", "timestamp", "epoch"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":    "long",
				"description": "must be a positive integer and is required",
				"minimum":     1,
			},
			"kind": bson.M{
				"bsonType":    "string",
				"description": "must be a known event kind and is required",
				"enum": []string{
					string(election.EventPollTitleSet),
					string(election.EventChoicesSet),
					string(election.EventWhitelistSet),
					string(election.EventWhitelistAdded),
					string(election.EventWhitelistRemoved),
					string(election.EventElectionStarted),
					string(election.EventElectionEnded),
					string(election.EventVoteCast),
				},
			},
			"timestamp": bson.M{
				"bsonType":    "date",
				"description": "must be a date and is required",
			},
			"epoch": bson.M{
				"bsonType":    "long",
				"description": "must be a non-negative integer and is required",
				"minimum":     0,
			},
		},
	},
}
