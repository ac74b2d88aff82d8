package services

import (
	"context"
	"testing"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeliveryReader struct {
	mock.Mock
}

func (m *MockDeliveryReader) Transition(ctx context.Context, alertID int64, phone string, next model.DeliveryStatus, carrierSID string) (bool, error) {
	args := m.Called(ctx, alertID, phone, next, carrierSID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryReader) FindByCarrierSID(ctx context.Context, sid string) (*model.DeliveryRecord, error) {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryRecord), args.Error(1)
}

func (m *MockDeliveryReader) FindLatestOpenByPhone(ctx context.Context, phone string) (*model.DeliveryRecord, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryRecord), args.Error(1)
}

func TestDeliveryService_HandleCallback_Delivered(t *testing.T) {
	deliveries := new(MockDeliveryReader)
	service := NewDeliveryService(deliveries, nil)
	ctx := context.Background()

	record := &model.DeliveryRecord{ID: 1, AlertID: 4, Phone: "+15551234567", Status: model.DeliverySent}
	deliveries.On("FindByCarrierSID", ctx, "SM100").Return(record, nil)
	deliveries.On("Transition", ctx, int64(4), "+15551234567", model.DeliveryDelivered, "SM100").
		Return(true, nil)

	err := service.HandleCallback(ctx, &StatusCallback{
		MessageSID:    "SM100",
		MessageStatus: "delivered",
		To:            "+15551234567",
	})
	require.NoError(t, err)
	deliveries.AssertExpectations(t)
}

func TestDeliveryService_HandleCallback_UndeliveredMapsToFailed(t *testing.T) {
	deliveries := new(MockDeliveryReader)
	service := NewDeliveryService(deliveries, nil)
	ctx := context.Background()

	record := &model.DeliveryRecord{ID: 1, AlertID: 4, Phone: "+15551234567", Status: model.DeliverySent}
	deliveries.On("FindByCarrierSID", ctx, "SM101").Return(record, nil)
	deliveries.On("Transition", ctx, int64(4), "+15551234567", model.DeliveryFailed, "SM101").
		Return(true, nil)

	err := service.HandleCallback(ctx, &StatusCallback{
		MessageSID:    "SM101",
		MessageStatus: "undelivered",
		To:            "+15551234567",
		ErrorCode:     "30005",
	})
	require.NoError(t, err)
	deliveries.AssertExpectations(t)
}

func TestDeliveryService_HandleCallback_UnknownStatusIgnored(t *testing.T) {
	deliveries := new(MockDeliveryReader)
	service := NewDeliveryService(deliveries, nil)

	err := service.HandleCallback(context.Background(), &StatusCallback{
		MessageSID:    "SM102",
		MessageStatus: "queued",
	})
	require.NoError(t, err)

	deliveries.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliveryService_HandleCallback_FallsBackToPhone(t *testing.T) {
	deliveries := new(MockDeliveryReader)
	service := NewDeliveryService(deliveries, nil)
	ctx := context.Background()

	// Callback raced ahead of the engine writing the SID
	record := &model.DeliveryRecord{ID: 2, AlertID: 5, Phone: "+15559998888", Status: model.DeliveryPending}
	deliveries.On("FindByCarrierSID", ctx, "SM103").Return(nil, repository.ErrDeliveryRecordNotFound)
	deliveries.On("FindLatestOpenByPhone", ctx, "+15559998888").Return(record, nil)
	deliveries.On("Transition", ctx, int64(5), "+15559998888", model.DeliveryDelivered, "SM103").
		Return(true, nil)

	err := service.HandleCallback(ctx, &StatusCallback{
		MessageSID:    "SM103",
		MessageStatus: "delivered",
		To:            "(555) 999-8888",
	})
	require.NoError(t, err)
	deliveries.AssertExpectations(t)
}

func TestDeliveryService_HandleCallback_UnmatchedIsSwallowed(t *testing.T) {
	deliveries := new(MockDeliveryReader)
	service := NewDeliveryService(deliveries, nil)
	ctx := context.Background()

	deliveries.On("FindByCarrierSID", ctx, "SM104").Return(nil, repository.ErrDeliveryRecordNotFound)
	deliveries.On("FindLatestOpenByPhone", ctx, "+15550001111").Return(nil, repository.ErrDeliveryRecordNotFound)

	err := service.HandleCallback(ctx, &StatusCallback{
		MessageSID:    "SM104",
		MessageStatus: "delivered",
		To:            "+15550001111",
	})
	assert.NoError(t, err)
}

func TestDeliveryService_HandleCallback_LateCallbackNoRegression(t *testing.T) {
	deliveries := new(MockDeliveryReader)
	service := NewDeliveryService(deliveries, nil)
	ctx := context.Background()

	// Record already delivered; a stale sent callback must not downgrade it
	record := &model.DeliveryRecord{ID: 3, AlertID: 6, Phone: "+15551234567", Status: model.DeliveryDelivered}
	deliveries.On("FindByCarrierSID", ctx, "SM105").Return(record, nil)
	deliveries.On("Transition", ctx, int64(6), "+15551234567", model.DeliverySent, "SM105").
		Return(false, nil)

	err := service.HandleCallback(ctx, &StatusCallback{
		MessageSID:    "SM105",
		MessageStatus: "sent",
		To:            "+15551234567",
	})
	require.NoError(t, err)
	deliveries.AssertExpectations(t)
}
