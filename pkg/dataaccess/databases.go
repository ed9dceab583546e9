package dataaccess

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB is the Mongo client. This is a connection pool. It is nil when no Mongo URI is configured.
var MongoDB *mongo.Client

const (
	mongoDatabase = "intercord"

	bindingsCollection = "bindings"
)

// ErrBindingNotFound is returned when no binding exists for a channel.
var ErrBindingNotFound = errors.New("binding not found")
