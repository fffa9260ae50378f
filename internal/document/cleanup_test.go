package document

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"insadmin/internal/storage"
	storeMocks "insadmin/internal/storage/mocks"
)

type fakeEntity struct {
	ID string
}

func TestCleaner_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("persist failure aborts before any deletion", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		cleaner := NewCleaner(mStore)
		persistErr := errors.New("db write failed")

		entity, err := Apply(ctx, cleaner, "cust-1", func(context.Context) (*fakeEntity, error) {
			return nil, persistErr
		}, []string{"k1", "k2"})

		assert.ErrorIs(t, err, persistErr)
		assert.Nil(t, entity)
		mStore.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})

	t.Run("deletions run after persist succeeds", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("DeleteMany", ctx, []string{"k1", "k2"}).Return([]storage.DeleteResult{
			{Key: "k1"},
			{Key: "k2"},
		})
		cleaner := NewCleaner(mStore)

		entity, err := Apply(ctx, cleaner, "cust-1", func(context.Context) (*fakeEntity, error) {
			return &fakeEntity{ID: "cust-1"}, nil
		}, []string{"k1", "k2"})

		assert.NoError(t, err)
		assert.Equal(t, "cust-1", entity.ID)
		mStore.AssertExpectations(t)
	})

	t.Run("deletion failures never fail the mutation", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("DeleteMany", ctx, []string{"k1", "k2"}).Return([]storage.DeleteResult{
			{Key: "k1", Err: errors.New("storage flake")},
			{Key: "k2"},
		})
		cleaner := NewCleaner(mStore)

		entity, err := Apply(ctx, cleaner, "cust-1", func(context.Context) (*fakeEntity, error) {
			return &fakeEntity{ID: "cust-1"}, nil
		}, []string{"k1", "k2"})

		assert.NoError(t, err)
		assert.NotNil(t, entity)
	})

	t.Run("no keys means no storage call", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		cleaner := NewCleaner(mStore)

		_, err := Apply(ctx, cleaner, "cust-1", func(context.Context) (*fakeEntity, error) {
			return &fakeEntity{}, nil
		}, nil)

		assert.NoError(t, err)
		mStore.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})
}
