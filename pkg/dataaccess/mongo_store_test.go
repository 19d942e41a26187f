package dataaccess

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Jacobbrewer1/ticketdesk/pkg/entities"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore_Categories(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("add category", func(mt *mtest.T) {
		s := NewMongoStore(slog.Default(), mt.Client, mt.DB.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c := &entities.Category{Main: "tech", Sub: strPtr("login")}
		require.NoError(mt, s.AddCategory(context.Background(), c))
		require.NotZero(mt, c.ID)
		require.False(mt, c.CreatedAt.Time().IsZero())

		started := mt.GetStartedEvent()
		require.Equal(mt, "insert", started.CommandName)
	})

	mt.Run("get categories by main", func(mt *mtest.T) {
		s := NewMongoStore(slog.Default(), mt.Client, mt.DB.Name())
		ns := mt.DB.Name() + "." + tableCategories
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "seq", Value: int64(1)}, {Key: "main", Value: "tech"}, {Key: "sub", Value: "login"}},
			bson.D{{Key: "seq", Value: int64(2)}, {Key: "main", Value: "tech"}, {Key: "sub", Value: "payment"}},
		))

		got, err := s.GetCategoriesByMain(context.Background(), "tech")
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		require.Equal(mt, "login", *got[0].Sub)
		require.Equal(mt, "payment", *got[1].Sub)
	})

	mt.Run("null sub decodes to nil", func(mt *mtest.T) {
		s := NewMongoStore(slog.Default(), mt.Client, mt.DB.Name())
		ns := mt.DB.Name() + "." + tableCategories
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "seq", Value: int64(1)}, {Key: "main", Value: "billing"}, {Key: "sub", Value: nil}},
		))

		got, err := s.GetCategories(context.Background())
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		require.Nil(mt, got[0].Sub)
	})
}

func TestMongoStore_Config(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("set config upserts", func(mt *mtest.T) {
		s := NewMongoStore(slog.Default(), mt.Client, mt.DB.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, s.SetConfig(context.Background(), entities.ConfigKeyTitle, "Help"))

		started := mt.GetStartedEvent()
		require.Equal(mt, "update", started.CommandName)
		upsert, err := started.Command.LookupErr("updates", "0", "upsert")
		require.NoError(mt, err)
		require.True(mt, upsert.Boolean())
	})

	mt.Run("get config", func(mt *mtest.T) {
		s := NewMongoStore(slog.Default(), mt.Client, mt.DB.Name())
		ns := mt.DB.Name() + "." + tableConfig
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "key", Value: "title"}, {Key: "value", Value: "Help"}},
		))

		got, err := s.GetConfig(context.Background(), entities.ConfigKeyTitle)
		require.NoError(mt, err)
		require.Equal(mt, "Help", got)
	})

	mt.Run("get missing config", func(mt *mtest.T) {
		s := NewMongoStore(slog.Default(), mt.Client, mt.DB.Name())
		ns := mt.DB.Name() + "." + tableConfig
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.GetConfig(context.Background(), entities.ConfigKeyDescription)
		require.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoStore_Admins(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save and list admins", func(mt *mtest.T) {
		s := NewMongoStore(slog.Default(), mt.Client, mt.DB.Name())
		ns := mt.DB.Name() + "." + tableAdmins
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "id", Value: "42"}},
			),
		)

		grant := &entities.AdminGrant{ID: "42"}
		require.NoError(mt, s.SaveAdmin(context.Background(), grant))
		require.False(mt, grant.RegisteredAt.Time().IsZero())

		got, err := s.GetAdmins(context.Background())
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		require.Equal(mt, "42", got[0].ID)
	})
}
