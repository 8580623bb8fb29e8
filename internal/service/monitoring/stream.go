package monitoring

// subscriberBuffer bounds the per-subscriber alert queue. When a consumer
// falls behind, the oldest queued alert is dropped in favor of the new one.
const subscriberBuffer = 64

// Subscriber receives live alerts from the aggregator.
type Subscriber struct {
	ch chan Alert
}

// Alerts is the subscriber's receive channel. It is closed on Unsubscribe.
func (s *Subscriber) Alerts() <-chan Alert {
	return s.ch
}

// Subscribe registers a live alert consumer. Alerts raised while streaming is
// stopped are still recorded and countable, just not pushed.
func (a *Aggregator) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Alert, subscriberBuffer)}
	a.subMu.Lock()
	a.subscribers[sub] = struct{}{}
	a.subMu.Unlock()
	return sub
}

// Unsubscribe removes the consumer and closes its channel.
func (a *Aggregator) Unsubscribe(sub *Subscriber) {
	a.subMu.Lock()
	if _, ok := a.subscribers[sub]; ok {
		delete(a.subscribers, sub)
		close(sub.ch)
	}
	a.subMu.Unlock()
}

// StartStreaming arms the live alert feed.
func (a *Aggregator) StartStreaming() {
	a.subMu.Lock()
	a.streaming = true
	a.subMu.Unlock()
}

// StopStreaming disarms the live alert feed. Recording is unaffected.
func (a *Aggregator) StopStreaming() {
	a.subMu.Lock()
	a.streaming = false
	a.subMu.Unlock()
}

// StreamingEnabled reports whether the live feed is armed.
func (a *Aggregator) StreamingEnabled() bool {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	return a.streaming
}

func (a *Aggregator) publish(alert Alert) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	if !a.streaming {
		return
	}
	for sub := range a.subscribers {
		select {
		case sub.ch <- alert:
		default:
			// Full queue: drop the oldest and retry once.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- alert:
			default:
			}
		}
	}
}
