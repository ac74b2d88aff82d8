package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubscriberService struct {
	mock.Mock
}

func (m *MockSubscriberService) SubscribeFromWeb(ctx context.Context, rawPhone string) (*model.Subscriber, error) {
	args := m.Called(ctx, rawPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscriber), args.Error(1)
}

func (m *MockSubscriberService) ListActive(ctx context.Context) ([]*model.Subscriber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Subscriber), args.Error(1)
}

func TestSubscriberHandler_Subscribe(t *testing.T) {
	t.Run("subscribes via the web form", func(t *testing.T) {
		svc := new(MockSubscriberService)
		handler := NewSubscriberHandler(svc)

		svc.On("SubscribeFromWeb", mock.Anything, "(555) 123-4567").
			Return(&model.Subscriber{ID: 1, Phone: "+15551234567", Status: model.SubscriberActive}, nil)

		body, _ := json.Marshal(subscribeRequest{Phone: "(555) 123-4567"})
		ctx := setupTestContext("POST", "/api/subscribe", body)
		handler.Subscribe(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var resp subscribeResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "You're now subscribed to Curve Community Alerts!", resp.Message)

		svc.AssertExpectations(t)
	})

	t.Run("invalid phone", func(t *testing.T) {
		svc := new(MockSubscriberService)
		handler := NewSubscriberHandler(svc)

		svc.On("SubscribeFromWeb", mock.Anything, "").Return(nil, model.ErrInvalidPhone)

		body, _ := json.Marshal(subscribeRequest{})
		ctx := setupTestContext("POST", "/api/subscribe", body)
		handler.Subscribe(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())

		var resp subscribeResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.False(t, resp.Success)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(MockSubscriberService)
		handler := NewSubscriberHandler(svc)

		svc.On("SubscribeFromWeb", mock.Anything, "+15551234567").Return(nil, errors.New("db down"))

		body, _ := json.Marshal(subscribeRequest{Phone: "+15551234567"})
		ctx := setupTestContext("POST", "/api/subscribe", body)
		handler.Subscribe(ctx)

		assert.Equal(t, 500, ctx.Response.StatusCode())
	})
}

func TestSubscriberHandler_ListSubscribers(t *testing.T) {
	t.Run("lists active subscribers", func(t *testing.T) {
		svc := new(MockSubscriberService)
		handler := NewSubscriberHandler(svc)

		svc.On("ListActive", mock.Anything).Return([]*model.Subscriber{
			{ID: 1, Phone: "+15551234567", Status: model.SubscriberActive},
			{ID: 2, Phone: "+15559876543", Status: model.SubscriberActive},
		}, nil)

		ctx := setupTestContext("GET", "/subscribers", nil)
		handler.ListSubscribers(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var resp subscribersResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		require.Len(t, resp.Subscribers, 2)
		assert.Equal(t, "+15551234567", resp.Subscribers[0].Phone)
	})

	t.Run("empty directory serializes as an array", func(t *testing.T) {
		svc := new(MockSubscriberService)
		handler := NewSubscriberHandler(svc)

		svc.On("ListActive", mock.Anything).Return(nil, nil)

		ctx := setupTestContext("GET", "/subscribers", nil)
		handler.ListSubscribers(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"subscribers":[]`)
	})
}
