package mq

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/rabbitmq-stream-go-client/pkg/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JWebSmart/Nft-marketplace/config"
)

// skipWithoutBroker skips tests that need a running RabbitMQ with the stream plugin.
func skipWithoutBroker(t *testing.T) {
	if os.Getenv("RABBITMQ_TEST_HOST") == "" {
		t.Skip("RABBITMQ_TEST_HOST not set")
	}
}

func getTestRabbitMQConfig(name string) config.RabbitMQConfig {
	return config.RabbitMQConfig{
		Enabled:    true,
		Host:       os.Getenv("RABBITMQ_TEST_HOST"),
		Port:       config.DefaultRabbitMQPort,
		VHost:      "/",
		User:       "guest",
		Password:   "guest",
		Stream:     name,
		Partitions: 3,
	}
}

// waitOrTimeout waits for wg, failing the test after ten seconds.
func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, name string) {
	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(10 * time.Second):
		t.Errorf("timeout in [%s]", name)
	}
}

func TestParseSubscription(t *testing.T) {
	_, height, err := parseSubscription("first")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), height)

	_, height, err = parseSubscription("last")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), height)

	_, height, err = parseSubscription("height:42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), height)

	for _, bad := range []string{"height:", "height:x", "height:-1", "latest"} {
		_, _, err = parseSubscription(bad)
		assert.Error(t, err, bad)
	}
}

func TestEncodeDecode(t *testing.T) {
	event := Event{
		Type:       EventNftMinted,
		Collection: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Uid:        "0xabc",
		TokenIds:   []string{"1", "2"},
		Height:     10,
		Timestamp:  time.Unix(1_700_000_000, 0).UTC(),
	}
	msg, err := encode(event)
	require.NoError(t, err)
	assert.Equal(t, "nft_minted", msg.Properties.Subject)
	assert.Equal(t, "0xabc", msg.ApplicationProperties["routing_key"])
	assert.NotEmpty(t, msg.Properties.MessageID)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	got, ok, err := decode(&amqp.Message{Data: [][]byte{raw}}, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, event, got)

	_, ok, err = decode(&amqp.Message{Data: [][]byte{raw}}, 11)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = decode(&amqp.Message{Data: [][]byte{[]byte("{")}}, -1)
	assert.Error(t, err)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "uid", Event{Uid: "uid", Collection: "c"}.RoutingKey())
	assert.Equal(t, "c/7", Event{TokenIds: []string{"7"}, Collection: "c"}.RoutingKey())
	assert.Equal(t, "c", Event{Collection: "c"}.RoutingKey())
}

// TestReplay publishes events and replays them from several offsets.
func TestReplay(t *testing.T) {
	skipWithoutBroker(t)

	cfg := getTestRabbitMQConfig("storefront-replay-test")
	producer, err := NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	_ = producer.DeleteStream(cfg.Stream)
	require.NoError(t, producer.DeclareStream(cfg.Stream, cfg.Partitions))

	const count = 5
	var sent []Event
	for i := 0; i < count; i++ {
		event := Event{
			Type:       EventNftMinted,
			Collection: "0xc011ec7100",
			TokenIds:   []string{fmt.Sprintf("%d", i)},
			Height:     int64(i),
			Timestamp:  time.Unix(int64(i), 0).UTC(),
		}
		sent = append(sent, event)
		require.NoError(t, producer.Publish(event))
	}

	time.Sleep(time.Second)

	testCases := []struct {
		name             string
		subscriptionType string
		expected         []Event
	}{
		{"from_first", "first", sent},
		{"from_height_0", "height:0", sent},
		{"from_height_2", "height:2", sent[2:]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			consumer, err := NewConsumer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.NoError(t, err)
			defer consumer.Close()

			var (
				mtx      sync.Mutex
				received []Event
				wg       sync.WaitGroup
			)
			wg.Add(1)
			err = consumer.Subscribe(tc.subscriptionType, "storefront-replay-"+tc.name, func(event Event) {
				mtx.Lock()
				defer mtx.Unlock()
				received = append(received, event)
				if len(received) == len(tc.expected) {
					wg.Done()
				}
			})
			require.NoError(t, err)

			waitOrTimeout(t, &wg, tc.name)

			mtx.Lock()
			defer mtx.Unlock()
			sort.Slice(received, func(i, j int) bool { return received[i].Height < received[j].Height })
			assert.Equal(t, tc.expected, received)
		})
	}
}
