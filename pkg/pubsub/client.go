package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox"
)

// Client publishes outbox messages to Pub/Sub. It satisfies outbox.Sink.
type Client struct {
	client  *pubsub.Client
	project string
	topics  []string

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient connects and fails fast if any of topics does not exist.
func NewClient(ctx context.Context, gcp config.GCPConfig, topics []string, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errors.New("pubsub: gcp project id is required")
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}

	raw, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub: connect: %w", err)
	}
	c := &Client{
		client:     raw,
		project:    project,
		topics:     nonBlank(topics),
		publishers: map[string]*pubsub.Publisher{},
	}
	if err := c.Ping(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "topics", c.topics), "pubsub client ready")
	}
	return c, nil
}

func nonBlank(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Ping checks that every configured topic exists.
func (c *Client) Ping(ctx context.Context) error {
	if len(c.topics) == 0 {
		return errors.New("pubsub: no topics configured")
	}
	for _, name := range c.topics {
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: TopicResourceName(c.project, name)})
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("pubsub: topic %q does not exist", name)
		}
		if err != nil {
			return fmt.Errorf("pubsub: get topic %q: %w", name, err)
		}
	}
	return nil
}

// Send publishes msg and waits for the server ack. Errors the broker will
// keep returning are wrapped with outbox.Permanent.
func (c *Client) Send(ctx context.Context, msg outbox.Message) error {
	pub := c.publisher(msg.Topic)
	if pub == nil {
		return outbox.Permanent(fmt.Errorf("pubsub: cannot resolve topic %q", msg.Topic))
	}
	_, err := pub.Publish(ctx, &pubsub.Message{Data: msg.Data, Attributes: msg.Attributes}).Get(ctx)
	if err != nil && !IsRetryable(err) {
		return outbox.Permanent(err)
	}
	return err
}

func (c *Client) publisher(topic string) *pubsub.Publisher {
	name := TopicResourceName(c.project, topic)
	if name == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pub, ok := c.publishers[name]
	if !ok {
		pub = c.client.Publisher(name)
		c.publishers[name] = pub
	}
	return pub
}

// Close flushes pending publishes and releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	for _, pub := range c.publishers {
		pub.Stop()
	}
	c.publishers = map[string]*pubsub.Publisher{}
	c.mu.Unlock()
	return c.client.Close()
}

// TopicResourceName expands a bare topic id to projects/<p>/topics/<id>.
// Full resource names pass through unchanged.
func TopicResourceName(projectID, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/"):
		return name
	case strings.TrimSpace(projectID) == "":
		return ""
	}
	return "projects/" + strings.TrimSpace(projectID) + "/topics/" + name
}

// IsRetryable reports whether a publish error may succeed on a later try.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied, codes.Unauthenticated, codes.FailedPrecondition:
		return false
	}
	return true
}
