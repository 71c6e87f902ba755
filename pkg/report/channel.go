package report

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topic names a pipeline area for property-driven log filtering.
type Topic string

const (
	TopicLayout  Topic = "layout"
	TopicText    Topic = "text"
	TopicImages  Topic = "images"
	TopicDisplay Topic = "display"
	TopicScroll  Topic = "scroll"
	TopicWindow  Topic = "window"
	TopicEdit    Topic = "edit"
)

// Message is one entry in the debug channel, retained for the overlay.
type Message struct {
	Time  time.Time
	Topic Topic
	Text  string
	Err   error
}

// Channel is the process debug-message channel: a bounded ring of recent
// messages (consumed by the debug overlay) paired with a zap logger.
// Logging is filtered per topic; errors always pass the filter.
type Channel struct {
	mu      sync.Mutex
	ring    []Message
	next    int
	filled  bool
	logger  *zap.Logger
	enabled map[Topic]bool
	all     bool
}

const defaultRingSize = 128

// NewChannel builds a channel over the given zap logger. A nil logger
// disables structured output but still fills the ring. With no topics
// enabled, Debugf traffic is dropped; Errors are always recorded.
func NewChannel(logger *zap.Logger, topics ...Topic) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Channel{
		ring:    make([]Message, defaultRingSize),
		logger:  logger,
		enabled: make(map[Topic]bool),
	}
	for _, t := range topics {
		c.Enable(t)
	}
	return c
}

// Enable turns on debug logging for a topic. The pseudo-topic "*" enables
// everything.
func (c *Channel) Enable(t Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t == "*" {
		c.all = true
		return
	}
	c.enabled[t] = true
}

func (c *Channel) topicEnabled(t Topic) bool {
	return c.all || c.enabled[t]
}

func (c *Channel) push(m Message) {
	c.ring[c.next] = m
	c.next++
	if c.next == len(c.ring) {
		c.next = 0
		c.filled = true
	}
}

// Debugf records a debug message for a topic, subject to the topic filter.
func (c *Channel) Debugf(t Topic, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.topicEnabled(t) {
		return
	}
	m := Message{Time: time.Now(), Topic: t, Text: sprintf(format, args...)}
	c.push(m)
	c.logger.Named(string(t)).Debug(m.Text)
}

// Warnf records a warning; warnings bypass the topic filter.
func (c *Channel) Warnf(t Topic, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := Message{Time: time.Now(), Topic: t, Text: sprintf(format, args...)}
	c.push(m)
	c.logger.Named(string(t)).Warn(m.Text)
}

// Report records a typed error. Recoverable kinds are logged at warn,
// fatal kinds at error. Always recorded regardless of topic filters.
func (c *Channel) Report(t Topic, err *Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := Message{Time: time.Now(), Topic: t, Text: err.Error(), Err: err}
	c.push(m)
	log := c.logger.Named(string(t))
	if err.Kind.Fatal() {
		log.Error(err.Error(), zap.String("kind", err.Kind.String()))
	} else {
		log.Warn(err.Error(), zap.String("kind", err.Kind.String()))
	}
}

// Recent returns the retained messages, oldest first.
func (c *Channel) Recent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Message
	if c.filled {
		out = append(out, c.ring[c.next:]...)
	}
	out = append(out, c.ring[:c.next]...)
	return out
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
