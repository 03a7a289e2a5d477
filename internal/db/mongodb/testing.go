package mongodb

import "go.mongodb.org/mongo-driver/mongo"

// NewStoreForTest creates a Store over the provided client (test-only).
func NewStoreForTest(client *mongo.Client, database string) *Store {
	return newStore(client, database)
}
