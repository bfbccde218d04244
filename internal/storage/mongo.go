package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"proptech/portal/internal/db"
)

const storageCollection = "client_storage"

// field names may not contain '.' or start with '$' in MongoDB.
var keyEscaper = strings.NewReplacer(".", "．", "$", "＄")

// Mongo keeps one document per namespace. Every write is a single
// update of that document, which MongoDB applies atomically.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(database *mongo.Database) *Mongo {
	return &Mongo{coll: database.Collection(storageCollection)}
}

type storageDoc struct {
	ID     string            `bson:"_id"`
	Values map[string]string `bson:"values"`
}

func (m *Mongo) Get(ctx context.Context, ns, key string) (string, bool, error) {
	field := "values." + keyEscaper.Replace(key)
	opts := options.FindOne().SetProjection(bson.M{field: 1})

	var doc storageDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": ns}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongo get %s: %w", key, err)
	}
	v, ok := doc.Values[keyEscaper.Replace(key)]
	return v, ok, nil
}

func (m *Mongo) SetMany(ctx context.Context, ns string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range values {
		set["values."+keyEscaper.Replace(k)] = v
	}
	// Two first writes racing on the same namespace can both attempt the
	// upsert insert; the loser gets a duplicate key error and succeeds on retry.
	return db.Try(func() error {
		_, err := m.coll.UpdateOne(ctx, bson.M{"_id": ns}, bson.M{"$set": set}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("mongo set %s: %w", ns, err)
		}
		return nil
	})
}

func (m *Mongo) Delete(ctx context.Context, ns string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, k := range keys {
		unset["values."+keyEscaper.Replace(k)] = ""
	}
	if _, err := m.coll.UpdateOne(ctx, bson.M{"_id": ns}, bson.M{"$unset": unset}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", ns, err)
	}
	return nil
}
