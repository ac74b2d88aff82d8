package services

import (
	"context"
	"testing"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubscriberRepository struct {
	mock.Mock
}

func (m *MockSubscriberRepository) UpsertActive(ctx context.Context, phone string) (*model.Subscriber, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscriber), args.Error(1)
}

func (m *MockSubscriberRepository) Deactivate(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

func (m *MockSubscriberRepository) ListActive(ctx context.Context) ([]*model.Subscriber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Subscriber), args.Error(1)
}

func (m *MockSubscriberRepository) IsActive(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func TestSubscriberService_Subscribe_NormalizesPhone(t *testing.T) {
	repo := new(MockSubscriberRepository)
	service := NewSubscriberService(repo, nil)
	ctx := context.Background()

	// All three formats collapse to the same canonical number
	repo.On("UpsertActive", ctx, "+15551234567").
		Return(&model.Subscriber{ID: 1, Phone: "+15551234567", Status: model.SubscriberActive}, nil).
		Times(3)

	for _, raw := range []string{"(555) 123-4567", "555.123.4567", "+1 555 123 4567"} {
		sub, err := service.Subscribe(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, "+15551234567", sub.Phone)
	}
	repo.AssertExpectations(t)
}

func TestSubscriberService_Subscribe_InvalidPhone(t *testing.T) {
	repo := new(MockSubscriberRepository)
	service := NewSubscriberService(repo, nil)

	_, err := service.Subscribe(context.Background(), "hello")
	assert.ErrorIs(t, err, model.ErrInvalidPhone)
	repo.AssertNotCalled(t, "UpsertActive", mock.Anything, mock.Anything)
}

func TestSubscriberService_Unsubscribe(t *testing.T) {
	repo := new(MockSubscriberRepository)
	service := NewSubscriberService(repo, nil)
	ctx := context.Background()

	repo.On("Deactivate", ctx, "+15551234567").Return(nil)

	require.NoError(t, service.Unsubscribe(ctx, "555-123-4567"))
	repo.AssertExpectations(t)
}

func TestSubscriberService_IsActive(t *testing.T) {
	repo := new(MockSubscriberRepository)
	service := NewSubscriberService(repo, nil)
	ctx := context.Background()

	repo.On("IsActive", ctx, "+15551234567").Return(true, nil)

	active, err := service.IsActive(ctx, "(555) 123-4567")
	require.NoError(t, err)
	assert.True(t, active)
}
