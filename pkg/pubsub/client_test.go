package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/dronemart-backend/pkg/config"
)

func TestResourceNames(t *testing.T) {
	c := &Client{projectID: "drone-proj"}

	assert.Equal(t, "projects/drone-proj/topics/orders", c.TopicResourceName(" orders "))
	assert.Equal(t, "projects/drone-proj/subscriptions/orders-sub", c.SubscriptionResourceName("orders-sub"))
	assert.Equal(t, "projects/other/topics/x", c.TopicResourceName("projects/other/topics/x"))
	assert.Equal(t, "", c.TopicResourceName(""))
	assert.Equal(t, "", (&Client{}).TopicResourceName("orders"))

	var nilClient *Client
	assert.Equal(t, "", nilClient.SubscriptionResourceName("orders"))
}

func TestNilClientGuards(t *testing.T) {
	var c *Client
	_, err := c.Publish(context.Background(), []byte("{}"), nil)
	assert.ErrorIs(t, err, errClientNotInitialized)
	assert.ErrorIs(t, c.Ping(context.Background()), errClientNotInitialized)
	assert.NoError(t, c.Close())
	assert.Nil(t, c.OrdersSubscription())
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)
}

func TestClientOptions(t *testing.T) {
	assert.Len(t, clientOptions(config.GCPConfig{CredentialsJSON: `{"a":1}`, ApplicationCredentials: "/tmp/x"}), 1)
	assert.Len(t, clientOptions(config.GCPConfig{ApplicationCredentials: "/tmp/x"}), 1)
	assert.Empty(t, clientOptions(config.GCPConfig{}))
}
