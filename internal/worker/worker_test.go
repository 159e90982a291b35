package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"blog_backend/internal/db"
	"blog_backend/internal/events"
	"blog_backend/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakePublisher struct {
	published []amqp.Publishing
	keys      []string
	err       error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.published = append(p.published, msg)
	return nil
}

func newTestWorker(t *testing.T) (*Worker, *gorm.DB, *observability.Metrics) {
	t.Helper()
	gdb, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, &PostActivity{}))
	t.Cleanup(func() { _ = db.Close(gdb) })

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return New(1, gdb, "post_events", metrics), gdb, metrics
}

func delivery(t *testing.T, ack amqp.Acknowledger, body interface{}, headers amqp.Table) amqp.Delivery {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		RoutingKey:   "post_events",
		ContentType:  "application/json",
		Headers:      headers,
		Body:         raw,
	}
}

func validEvent() events.PostEvent {
	return events.PostEvent{
		Type:       events.PostCreated,
		PostID:     "post-1",
		AuthorID:   "user-1",
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestProcess_RecordsActivity(t *testing.T) {
	w, gdb, metrics := newTestWorker(t)
	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}

	w.process(context.Background(), pub, delivery(t, ack, validEvent(), nil))

	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
	assert.Empty(t, pub.published)

	var activities []PostActivity
	require.NoError(t, gdb.Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, "post-1", activities[0].PostID)
	assert.Equal(t, "user-1", activities[0].AuthorID)
	assert.Equal(t, "post.created", activities[0].EventType)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsConsumedTotal.WithLabelValues("post_events")))
}

func TestProcess_InvalidPayloadIsDropped(t *testing.T) {
	w, gdb, metrics := newTestWorker(t)

	bodies := []interface{}{
		[]byte("not json"),
		events.PostEvent{Type: "post.deleted", PostID: "p", AuthorID: "u"},
		events.PostEvent{Type: events.PostUpdated, PostID: "p"},
	}

	for _, body := range bodies {
		ack := &fakeAcknowledger{}
		w.process(context.Background(), &fakePublisher{}, delivery(t, ack, body, nil))

		assert.Equal(t, 0, ack.acks)
		assert.Equal(t, 1, ack.nacks)
		assert.False(t, ack.requeue)
	}

	var count int64
	require.NoError(t, gdb.Model(&PostActivity{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.EventsFailedTotal.WithLabelValues("post_events", "invalid_payload")))
}

func TestProcess_StoreFailureRepublishesWithRetryCount(t *testing.T) {
	w, gdb, _ := newTestWorker(t)
	require.NoError(t, gdb.Migrator().DropTable(&PostActivity{}))

	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}

	w.process(context.Background(), pub, delivery(t, ack, validEvent(), amqp.Table{retryCountHeader: int32(1)}))

	assert.Equal(t, 1, ack.acks)
	require.Len(t, pub.published, 1)
	assert.Equal(t, []string{"post_events"}, pub.keys)
	assert.Equal(t, int32(2), pub.published[0].Headers[retryCountHeader])
}

func TestProcess_StoreFailureAfterMaxRetriesIsDropped(t *testing.T) {
	w, gdb, metrics := newTestWorker(t)
	require.NoError(t, gdb.Migrator().DropTable(&PostActivity{}))

	ack := &fakeAcknowledger{}
	pub := &fakePublisher{}

	w.process(context.Background(), pub, delivery(t, ack, validEvent(), amqp.Table{retryCountHeader: int32(maxRetries)}))

	assert.Equal(t, 0, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.Empty(t, pub.published)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsFailedTotal.WithLabelValues("post_events", "max_retries")))
}

func TestProcess_RepublishFailureIsDropped(t *testing.T) {
	w, gdb, _ := newTestWorker(t)
	require.NoError(t, gdb.Migrator().DropTable(&PostActivity{}))

	ack := &fakeAcknowledger{}
	pub := &fakePublisher{err: errors.New("channel closed")}

	w.process(context.Background(), pub, delivery(t, ack, validEvent(), nil))

	assert.Equal(t, 0, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeue)
}

func TestRetryCountOf(t *testing.T) {
	assert.Equal(t, int32(0), retryCountOf(amqp.Delivery{}))
	assert.Equal(t, int32(0), retryCountOf(amqp.Delivery{Headers: amqp.Table{retryCountHeader: "2"}}))
	assert.Equal(t, int32(2), retryCountOf(amqp.Delivery{Headers: amqp.Table{retryCountHeader: int32(2)}}))
}
