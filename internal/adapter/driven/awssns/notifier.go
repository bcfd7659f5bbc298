// Package awssns implements the Notifier port on AWS SNS.
package awssns

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/podaac/generate-token-creator/internal/domain/model"
	"github.com/podaac/generate-token-creator/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Notifier)(nil)

// SNSAPI is the subset of the SNS client the notifier uses.
type SNSAPI interface {
	ListTopics(ctx context.Context, params *sns.ListTopicsInput, optFns ...func(*sns.Options)) (*sns.ListTopicsOutput, error)
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier publishes failure events to the first SNS topic whose ARN
// contains the configured marker substring. The topic is provisioned by the
// surrounding infrastructure, not by this service.
type Notifier struct {
	sns     SNSAPI
	marker  string
	subject string
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that publishes with the given subject to
// the topic matching marker.
func NewNotifier(client SNSAPI, marker, subject string, logger *slog.Logger) *Notifier {
	return &Notifier{
		sns:     client,
		marker:  marker,
		subject: subject,
		logger:  logger,
	}
}

// Notify publishes the failure event. The topic lookup scans every page of
// ListTopics; no matching topic is an error, never a silent drop.
func (n *Notifier) Notify(ctx context.Context, event model.FailureEvent) error {
	arn, err := n.topicARN(ctx)
	if err != nil {
		return err
	}

	_, err = n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(arn),
		Subject:  aws.String(n.subject),
		Message:  aws.String(composeMessage(event)),
	})
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", arn, err)
	}

	n.logger.Info("published failure notification", "topic", arn, "kind", string(event.Kind))
	return nil
}

func (n *Notifier) topicARN(ctx context.Context) (string, error) {
	var next *string
	for {
		out, err := n.sns.ListTopics(ctx, &sns.ListTopicsInput{NextToken: next})
		if err != nil {
			return "", fmt.Errorf("listing SNS topics: %w", err)
		}
		for _, topic := range out.Topics {
			if topic.TopicArn != nil && strings.Contains(*topic.TopicArn, n.marker) {
				return *topic.TopicArn, nil
			}
		}
		if out.NextToken == nil {
			return "", fmt.Errorf("no SNS topic matches marker %q", n.marker)
		}
		next = out.NextToken
	}
}

// composeMessage renders the notification body. Operator alerting matches on
// the line labels; keep them stable.
func composeMessage(event model.FailureEvent) string {
	var b strings.Builder
	b.WriteString("The Generate Token Creator has encountered an error.\n")
	fmt.Fprintf(&b, "Log file: %s.\n", logLocation())
	fmt.Fprintf(&b, "Error type: %s.\n", event.Kind)
	fmt.Fprintf(&b, "Error description: %s\n", event.Description)
	if event.Context != "" {
		fmt.Fprintf(&b, "Error data: %s", event.Context)
	}
	return b.String()
}

// logLocation names where this run's logs went: the Lambda log stream when
// running under Lambda, otherwise the hostname.
func logLocation() string {
	group := os.Getenv("AWS_LAMBDA_LOG_GROUP_NAME")
	stream := os.Getenv("AWS_LAMBDA_LOG_STREAM_NAME")
	if group != "" || stream != "" {
		return group + "/" + stream
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
