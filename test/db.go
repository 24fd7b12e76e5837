package test

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.vocdoni.io/dvote/util"
)

// MongoPort is the port used by the MongoDB test container.
const MongoPort = "27017"

// StartMongoContainer starts a MongoDB container for testing the storage
// backends. It returns the container and any error encountered during
// startup.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	mongoPort := fmt.Sprintf("%s/tcp", MongoPort)
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				ExposedPorts: []string{mongoPort},
				WaitingFor:   wait.ForListeningPort(MongoPort),
			},
			Started: true,
		})
}

// RandomDatabaseName returns a random name for an ephemeral test database,
// so test packages sharing one container never collide.
func RandomDatabaseName() string {
	return fmt.Sprintf("ballotbox_test_%s", util.RandomHex(8))
}
