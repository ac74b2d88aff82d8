package repository

import (
	"context"
	"testing"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberRepository_UpsertActive(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewSubscriberRepository(db)
	ctx := context.Background()

	t.Run("creates new subscriber as active", func(t *testing.T) {
		sub, err := repo.UpsertActive(ctx, "+15551230001")
		require.NoError(t, err)
		assert.NotZero(t, sub.ID)
		assert.Equal(t, model.SubscriberActive, sub.Status)
	})

	t.Run("upsert of active subscriber is a no-op success", func(t *testing.T) {
		first, err := repo.UpsertActive(ctx, "+15551230002")
		require.NoError(t, err)

		second, err := repo.UpsertActive(ctx, "+15551230002")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, model.SubscriberActive, second.Status)
	})

	t.Run("reactivates inactive subscriber without duplicating", func(t *testing.T) {
		phone := "+15551230003"

		created, err := repo.UpsertActive(ctx, phone)
		require.NoError(t, err)
		require.NoError(t, repo.Deactivate(ctx, phone))

		active, err := repo.IsActive(ctx, phone)
		require.NoError(t, err)
		assert.False(t, active)

		again, err := repo.UpsertActive(ctx, phone)
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
		assert.Equal(t, model.SubscriberActive, again.Status)

		var count int64
		err = repo.Read(ctx).Model(&SubscriberEntity{}).Where("phone = ?", phone).Count(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestSubscriberRepository_Deactivate(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewSubscriberRepository(db)
	ctx := context.Background()

	t.Run("keeps the row for the audit trail", func(t *testing.T) {
		phone := "+15551230010"
		_, err := repo.UpsertActive(ctx, phone)
		require.NoError(t, err)

		require.NoError(t, repo.Deactivate(ctx, phone))

		var entity SubscriberEntity
		err = repo.Read(ctx).Where("phone = ?", phone).First(&entity).Error
		require.NoError(t, err)
		assert.Equal(t, string(model.SubscriberInactive), entity.Status)
	})

	t.Run("unknown phone returns not found", func(t *testing.T) {
		err := repo.Deactivate(ctx, "+15559999999")
		assert.ErrorIs(t, err, ErrSubscriberNotFound)
	})
}

func TestSubscriberRepository_ListActive(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewSubscriberRepository(db)
	ctx := context.Background()

	phones := []string{"+15551230020", "+15551230021", "+15551230022"}
	for _, p := range phones {
		_, err := repo.UpsertActive(ctx, p)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Deactivate(ctx, phones[1]))

	subs, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, s := range subs {
		assert.Equal(t, model.SubscriberActive, s.Status)
		assert.NotEqual(t, phones[1], s.Phone)
	}
}
