package pubsub

// Drain hands every message already queued on ch to fn in arrival order and
// returns without waiting for more.
func Drain(ch <-chan *Message, fn func(*Message)) int {
	n := 0
	for {
		select {
		case msg, ok := <-ch:
			if !ok || msg == nil {
				return n
			}
			fn(msg)
			n++
		default:
			return n
		}
	}
}
