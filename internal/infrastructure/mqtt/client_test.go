package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gatehouse-core/internal/infrastructure/config"
)

// testConfig returns a configuration pointing at a local broker.
// Tests that need a broker skip when none is listening on 127.0.0.1:1883.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "gatehouse-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// connectOrSkip connects to the local broker or skips the test.
func connectOrSkip(t *testing.T, cfg config.MQTTConfig) *Client {
	t.Helper()
	opts := buildClientOptions(cfg)
	opts.SetClientID(cfg.Broker.ClientID + "-check")
	opts.SetConnectRetry(false)
	check := pahomqtt.NewClient(opts)
	tok := check.Connect()
	if !tok.WaitTimeout(2*time.Second) || tok.Error() != nil {
		t.Skip("no MQTT broker on 127.0.0.1:1883")
	}
	check.Disconnect(0)

	client, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// unconnectedClient returns a Client whose paho client was never connected.
func unconnectedClient() *Client {
	cfg := testConfig()
	return &Client{client: pahomqtt.NewClient(buildClientOptions(cfg)), cfg: cfg}
}

func TestTopicBuilders(t *testing.T) {
	var topics Topics

	assert.Equal(t, "gatehouse/events/auth/login", topics.AuthEvent("login"))
	assert.Equal(t, "gatehouse/events/auth/role_change", topics.AuthEvent("role_change"))
	assert.Equal(t, "gatehouse/events/auth/+", topics.AllAuthEvents())
	assert.Equal(t, "gatehouse/system/status", topics.SystemStatus())
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Auth.Username = "svc"
	cfg.Auth.Password = "pw"

	opts := buildClientOptions(cfg)

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "ssl://127.0.0.1:1883", opts.Servers[0].String())
	assert.Equal(t, "gatehouse-test", opts.ClientID)
	assert.Equal(t, "svc", opts.Username)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, uint16(tlsMinVersion), opts.TLSConfig.MinVersion)
	assert.Equal(t, 5*time.Second, opts.MaxReconnectInterval)
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "gatehouse-test")

	require.True(t, opts.WillEnabled)
	assert.Equal(t, "gatehouse/system/status", opts.WillTopic)
	assert.True(t, opts.WillRetained)

	var p statusPayload
	require.NoError(t, json.Unmarshal(opts.WillPayload, &p))
	assert.Equal(t, "offline", p.Status)
	assert.Equal(t, "unexpected_disconnect", p.Reason)
}

func TestValidatePublish(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"ok", "a/b", []byte("x"), 1, nil},
		{"nil payload ok", "a/b", nil, 0, nil},
		{"empty topic", "", nil, 1, ErrInvalidTopic},
		{"bad qos", "a/b", nil, 3, ErrInvalidQoS},
		{"oversized", "a/b", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePublish(tt.topic, tt.payload, tt.qos)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPublishDisconnected(t *testing.T) {
	c := unconnectedClient()

	assert.ErrorIs(t, c.Publish("a/b", []byte("x"), 1, false), ErrNotConnected)
	assert.ErrorIs(t, c.PublishAuthEvent(AuthEvent{Kind: "login"}), ErrNotConnected)
	assert.ErrorIs(t, c.PublishAuthEvent(AuthEvent{}), ErrInvalidTopic, "event without kind")
}

func TestHealthCheck(t *testing.T) {
	c := unconnectedClient()

	assert.ErrorIs(t, c.HealthCheck(context.Background()), ErrNotConnected)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.HealthCheck(ctx), context.Canceled)
}

func TestCloseNil(t *testing.T) {
	var c *Client
	assert.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
}

func TestPublishAuthEvent_Roundtrip(t *testing.T) {
	cfg := testConfig()
	client := connectOrSkip(t, cfg)

	received := make(chan []byte, 1)
	subOpts := buildClientOptions(cfg)
	subOpts.SetClientID("gatehouse-test-sub")
	sub := pahomqtt.NewClient(subOpts)
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second), "subscriber connect timed out")
	require.NoError(t, tok.Error())
	defer sub.Disconnect(0)

	tok = sub.Subscribe(Topics{}.AllAuthEvents(), 1, func(_ pahomqtt.Client, m pahomqtt.Message) {
		received <- m.Payload()
	})
	require.True(t, tok.WaitTimeout(5*time.Second), "subscribe timed out")
	require.NoError(t, tok.Error())

	require.NoError(t, client.PublishAuthEvent(AuthEvent{Kind: "login", UserID: "usr-1", Role: "admin"}))

	select {
	case payload := <-received:
		var ev AuthEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, "login", ev.Kind)
		assert.Equal(t, "usr-1", ev.UserID)
		assert.NotContains(t, string(payload), "token")
	case <-time.After(5 * time.Second):
		t.Error("event was not received")
	}
}
