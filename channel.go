package katachi

// Verdict is what a channel subscriber returns to steer the rest of a
// publish. The zero value lets the publish continue.
type Verdict uint8

const (
	// Pass lets the publish continue to the remaining subscribers.
	Pass Verdict = iota
	// Cancel short-circuits the current publish: no later subscriber and no
	// fallback runs. The next publish starts clean.
	Cancel
)

// Subscription identifies one subscriber on a channel so it can be removed
// explicitly.
type Subscription int

type channelSub[T any] struct {
	id Subscription
	fn func(T) Verdict
}

// Channel is an ordered observer list. Producers publish values; subscribers
// receive them in subscription order. It decouples state transitions and
// timers from the sound effects and UI updates that react to them: the
// producer never learns who is listening.
//
// An optional fallback callback runs after all subscribers, unless one of
// them cancelled the publish.
type Channel[T any] struct {
	subs     []channelSub[T]
	fallback func(T)
	nextID   Subscription
}

// NewChannel creates a channel. The fallback may be nil; when set, it is the
// default behavior the subscribers wrap, invoked after them on every
// uncancelled publish.
func NewChannel[T any](fallback func(T)) *Channel[T] {
	return &Channel[T]{fallback: fallback}
}

// Subscribe appends fn to the subscriber list and returns a token for
// Unsubscribe. Subscribers are invoked in subscription order.
func (c *Channel[T]) Subscribe(fn func(T) Verdict) Subscription {
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, channelSub[T]{id: id, fn: fn})
	return id
}

// Notify subscribes a callback that never cancels.
func (c *Channel[T]) Notify(fn func(T)) Subscription {
	return c.Subscribe(func(v T) Verdict {
		fn(v)
		return Pass
	})
}

// Unsubscribe removes the subscriber identified by sub. The remaining
// subscribers keep their relative order. Removing an unknown token does
// nothing.
func (c *Channel[T]) Unsubscribe(sub Subscription) {
	for i := range c.subs {
		if c.subs[i].id == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers v to each subscriber in subscription order, then to the
// fallback if one was set. A subscriber returning Cancel stops that delivery
// for this publish only.
func (c *Channel[T]) Publish(v T) {
	for _, s := range c.subs {
		if s.fn(v) == Cancel {
			return
		}
	}
	if c.fallback != nil {
		c.fallback(v)
	}
}

// Len returns the number of subscribers.
func (c *Channel[T]) Len() int {
	return len(c.subs)
}
