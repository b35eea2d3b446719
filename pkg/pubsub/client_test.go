package pubsub

import "testing"

func TestResourceNames(t *testing.T) {
	tests := []struct {
		name    string
		project string
		input   string
		topic   string
		sub     string
	}{
		{name: "short ids", project: "p1", input: "notif", topic: "projects/p1/topics/notif", sub: "projects/p1/subscriptions/notif"},
		{name: "trimmed", project: " p1 ", input: " notif ", topic: "projects/p1/topics/notif", sub: "projects/p1/subscriptions/notif"},
		{name: "empty name", project: "p1", input: "", topic: "", sub: ""},
		{name: "missing project", project: "", input: "notif", topic: "", sub: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopicResourceName(tt.project, tt.input); got != tt.topic {
				t.Fatalf("topic: expected %q got %q", tt.topic, got)
			}
			if got := SubscriptionResourceName(tt.project, tt.input); got != tt.sub {
				t.Fatalf("subscription: expected %q got %q", tt.sub, got)
			}
		})
	}
}

func TestResourceNamesPassThroughFullNames(t *testing.T) {
	full := "projects/other/subscriptions/notif"
	if got := SubscriptionResourceName("p1", full); got != full {
		t.Fatalf("expected pass-through, got %q", got)
	}
	if got := TopicResourceName("p1", full); got == full {
		t.Fatalf("subscription path should not be accepted as a topic")
	}
}

func TestNilClientHandles(t *testing.T) {
	var c *Client
	if c.NotificationPublisher() != nil || c.NotificationSubscription() != nil {
		t.Fatalf("nil client should return nil handles")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
	if _, err := NewTopicPublisher(nil); err == nil {
		t.Fatalf("expected error for nil publisher")
	}
}
