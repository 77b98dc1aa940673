package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list maps _id to id", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.items", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "bmw"}, {Key: "name", Value: "BMW"}},
			bson.D{{Key: "_id", Value: "yammie1"}, {Key: "name", Value: "YAMAHA"}},
		))
		docs, err := s.List(ctx, "items")
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		require.Equal(mt, "bmw", docs[0].ID())
		_, hasRaw := docs[0]["_id"]
		require.False(mt, hasRaw)
	})

	mt.Run("get missing returns nil", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.items", mtest.FirstBatch))
		d, err := s.Get(ctx, "items", "nope")
		require.NoError(mt, err)
		require.Nil(mt, d)
	})

	mt.Run("insert assigns id", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		d, err := s.Insert(ctx, "items", resource.Document{"name": "BMW"})
		require.NoError(mt, err)
		require.NotEmpty(mt, d.ID())
		require.Equal(mt, "BMW", d["name"])
	})

	mt.Run("update returns new state", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "bmw"}, {Key: "model", Value: "R80"},
		}}))
		d, err := s.Update(ctx, "items", "bmw", resource.Document{"model": "R80"})
		require.NoError(mt, err)
		require.Equal(mt, "R80", d["model"])
		require.Equal(mt, "bmw", d.ID())
	})

	mt.Run("delete counts", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		ok, err := s.Delete(ctx, "items", "bmw")
		require.NoError(mt, err)
		require.True(mt, ok)
		ok, err = s.Delete(ctx, "items", "bmw")
		require.NoError(mt, err)
		require.False(mt, ok)
	})

	mt.Run("store errors surface", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))
		_, err := s.List(ctx, "items")
		require.Error(mt, err)
		require.Contains(mt, err.Error(), "not authorized")
	})

	mt.Run("join attaches members", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.$cmd.listCollections", mtest.FirstBatch,
				bson.D{{Key: "name", Value: "parts"}, {Key: "type", Value: "collection"}}),
			mtest.CreateCursorResponse(0, "test.items", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "bmw"},
				{Key: "name", Value: "BMW"},
				{Key: "parts", Value: bson.A{
					bson.D{{Key: "_id", Value: "p1"}, {Key: "itemId", Value: "bmw"}},
					bson.D{{Key: "_id", Value: "p2"}, {Key: "itemId", Value: "bmw"}},
					bson.D{{Key: "_id", Value: "p3"}, {Key: "itemId", Value: "bmw"}},
				}},
			}),
		)
		d, err := s.Join(ctx, "items", "bmw", resource.JoinSpec{Member: "parts", Column: "itemId"})
		require.NoError(mt, err)
		parts, ok := d["parts"].([]resource.Document)
		require.True(mt, ok)
		require.Len(mt, parts, 3)
		require.Equal(mt, "p1", parts[0].ID())
	})

	mt.Run("join against missing collection fails", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.$cmd.listCollections", mtest.FirstBatch))
		_, err := s.Join(ctx, "items", "bmw", resource.JoinSpec{Member: "wheels", Column: "itemId"})
		require.True(mt, errors.Is(err, ErrCollectionNotFound))
	})

	mt.Run("members without matches is empty", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.$cmd.listCollections", mtest.FirstBatch,
				bson.D{{Key: "name", Value: "parts"}, {Key: "type", Value: "collection"}}),
			mtest.CreateCursorResponse(0, "test.parts", mtest.FirstBatch),
		)
		docs, err := s.Members(ctx, resource.JoinSpec{Member: "parts", Column: "itemId"}, "tx500")
		require.NoError(mt, err)
		require.NotNil(mt, docs)
		require.Empty(mt, docs)
	})
}
