package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/shopdesk-backend/pkg/config"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub domain topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client wraps the Pub/Sub v2 client together with the domain topic and the
// notification subscription this service uses.
type Client struct {
	client *pubsub.Client
	names  names
	cfg    config.PubSubConfig
}

// NewClient dials Pub/Sub and fails fast when the domain topic, or the
// notification subscription if one is configured, does not exist.
// PUBSUB_EMULATOR_HOST is honoured by the underlying client.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	switch {
	case strings.TrimSpace(gcp.ProjectID) == "":
		return nil, errProjectIDRequired
	case strings.TrimSpace(cfg.DomainTopic) == "":
		return nil, errTopicRequired
	}

	raw, err := pubsub.NewClient(ctx, gcp.ProjectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{client: raw, names: names{project: gcp.ProjectID}, cfg: cfg}
	if err := c.Ping(ctx); err != nil {
		return nil, multierr.Append(err, raw.Close())
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"project":      gcp.ProjectID,
			"topic":        cfg.DomainTopic,
			"subscription": cfg.NotificationSubscription,
		}), "pubsub.connected")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	if js := strings.TrimSpace(gcp.CredentialsJSON); js != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(js))}
	}
	if path := strings.TrimSpace(gcp.ApplicationCredentials); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

// checkResource turns a NotFound from the admin API into a readable error.
func checkResource(kind, id, resource string, get func() error) error {
	if resource == "" {
		return fmt.Errorf("%s %q not configured", kind, id)
	}
	err := get()
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", kind, id)
	default:
		return fmt.Errorf("checking %s %q: %w", kind, id, err)
	}
}

func (c *Client) checkTopic(ctx context.Context, id string) error {
	resource := c.names.topic(id)
	return checkResource("topic", id, resource, func() error {
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: resource})
		return err
	})
}

func (c *Client) checkSubscription(ctx context.Context, id string) error {
	resource := c.names.subscription(id)
	return checkResource("subscription", id, resource, func() error {
		_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: resource})
		return err
	})
}

// Ping resolves the domain topic and the notification subscription and
// reports every missing resource at once.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	err := c.checkTopic(ctx, c.cfg.DomainTopic)
	if strings.TrimSpace(c.cfg.NotificationSubscription) != "" {
		err = multierr.Append(err, c.checkSubscription(ctx, c.cfg.NotificationSubscription))
	}
	return err
}

// Subscription accepts a subscription id or a full resource name.
func (c *Client) Subscription(id string) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	if resource := c.names.subscription(id); resource != "" {
		return c.client.Subscriber(resource)
	}
	return nil
}

func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.NotificationSubscription)
}

// Publisher accepts a topic id or a full resource name.
func (c *Client) Publisher(id string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	if resource := c.names.topic(id); resource != "" {
		return c.client.Publisher(resource)
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
