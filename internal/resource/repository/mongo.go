package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database. The public "id" field is
// stored as the document's _id; generated ids are ObjectID hex strings so that
// every id travels as a plain string in URLs.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates a non-unique index on the referencing column of every
// join so member lookups do not scan the member collection.
func (m *MongoStore) EnsureIndexes(ctx context.Context, joins []resource.JoinSpec) error {
	for _, j := range joins {
		idx := mongo.IndexModel{Keys: bson.D{{Key: mongoField(j.Column), Value: 1}}}
		if _, err := m.db.Collection(j.Member).Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("create index %s: %w", j, err)
		}
	}
	return nil
}

func mongoField(f string) string {
	if f == resource.FieldID {
		return "_id"
	}
	return f
}

func toBSON(d resource.Document) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[mongoField(k)] = v
	}
	return out
}

func fromBSON(m bson.M) resource.Document {
	out := make(resource.Document, len(m))
	for k, v := range m {
		if k == "_id" {
			k = resource.FieldID
		}
		out[k] = fromBSONValue(v)
	}
	return out
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return fromBSON(t)
	case map[string]any:
		return fromBSON(bson.M(t))
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return fromBSON(m)
	case bson.A:
		return fromBSONArray(t)
	case []any:
		return fromBSONArray(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	}
	return v
}

func fromBSONArray(a []any) []any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = fromBSONValue(v)
	}
	return out
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]resource.Document, error) {
	defer cur.Close(ctx)
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]resource.Document, 0, len(raw))
	for _, r := range raw {
		out = append(out, fromBSON(r))
	}
	return out, nil
}

func (m *MongoStore) collectionExists(ctx context.Context, name string) error {
	names, err := m.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return nil
}

func (m *MongoStore) List(ctx context.Context, coll string) ([]resource.Document, error) {
	cur, err := m.db.Collection(coll).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

func (m *MongoStore) Get(ctx context.Context, coll, id string) (resource.Document, error) {
	var raw bson.M
	err := m.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return fromBSON(raw), nil
}

func (m *MongoStore) Insert(ctx context.Context, coll string, doc resource.Document) (resource.Document, error) {
	d := doc.Clone()
	if d == nil {
		d = resource.Document{}
	}
	if d.ID() == "" {
		d[resource.FieldID] = primitive.NewObjectID().Hex()
	}
	if _, err := m.db.Collection(coll).InsertOne(ctx, toBSON(d)); err != nil {
		return nil, err
	}
	return d, nil
}

func (m *MongoStore) Update(ctx context.Context, coll, id string, patch resource.Document) (resource.Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err := m.db.Collection(coll).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": toBSON(patch)}, opts).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return fromBSON(raw), nil
}

func (m *MongoStore) Delete(ctx context.Context, coll, id string) (bool, error) {
	res, err := m.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

func (m *MongoStore) Filter(ctx context.Context, coll string, f resource.Filter) ([]resource.Document, error) {
	cur, err := m.db.Collection(coll).Find(ctx, bson.M{mongoField(f.Field): f.Value.Value()})
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

// Join runs a single $match/$lookup aggregation. $lookup silently yields an
// empty array for a missing collection, so the member collection is checked
// first and reported as an error instead.
func (m *MongoStore) Join(ctx context.Context, coll, id string, spec resource.JoinSpec) (resource.Document, error) {
	if err := m.collectionExists(ctx, spec.Member); err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         spec.Member,
			"localField":   "_id",
			"foreignField": mongoField(spec.Column),
			"as":           spec.Member,
		}}},
	}
	cur, err := m.db.Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, coll, id)
	}
	joined := docs[0]
	members := []resource.Document{}
	if arr, ok := joined[spec.Member].([]any); ok {
		for _, v := range arr {
			if d, ok := v.(resource.Document); ok {
				members = append(members, d)
			}
		}
	}
	joined[spec.Member] = members
	return joined, nil
}

func (m *MongoStore) Members(ctx context.Context, spec resource.JoinSpec, id string) ([]resource.Document, error) {
	if err := m.collectionExists(ctx, spec.Member); err != nil {
		return nil, err
	}
	cur, err := m.db.Collection(spec.Member).Find(ctx, bson.M{mongoField(spec.Column): id})
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}
