package ingest

// Message represents a consumed broker message.
// It provides methods for acknowledging, rejecting, and accessing the
// message data.
type Message interface {
	// AckMsg acknowledges the message, removing it from the queue.
	AckMsg() error

	// NackMsg negatively acknowledges the message.
	// If requeue is true, the message is requeued; otherwise it is dropped.
	NackMsg(requeue bool) error

	// Body returns the message payload as a byte slice.
	Body() []byte

	// RoutingKey returns the topic the message was published under.
	RoutingKey() string

	// Header returns the message headers.
	Header() map[string]interface{}
}
