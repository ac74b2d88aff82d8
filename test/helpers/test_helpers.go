package helpers

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/pg"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.SubscriberEntity{},
		&repository.AlertEntity{},
		&repository.DeliveryRecordEntity{},
		&repository.ReportEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestSubscriber(t *testing.T, db *pg.DB, phone string) *repository.SubscriberEntity {
	ctx := context.Background()
	sub := &repository.SubscriberEntity{
		Phone:  phone,
		Status: string(model.SubscriberActive),
	}
	err := db.Write(ctx).Create(sub).Error
	require.NoError(t, err)
	return sub
}

func CreateTestAlert(t *testing.T, db *pg.DB, body string) *repository.AlertEntity {
	ctx := context.Background()
	alert := &repository.AlertEntity{
		Body:      body,
		CreatedAt: time.Now(),
	}
	err := db.Write(ctx).Create(alert).Error
	require.NoError(t, err)
	return alert
}

func CreateTestReport(t *testing.T, db *pg.DB, phone, issue string) *repository.ReportEntity {
	ctx := context.Background()
	report := &repository.ReportEntity{
		Phone:  phone,
		Issue:  issue,
		Status: string(model.ReportPending),
	}
	err := db.Write(ctx).Create(report).Error
	require.NoError(t, err)
	return report
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
