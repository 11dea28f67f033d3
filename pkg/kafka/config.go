package kafka

// Config holds the broker endpoints and the topic the service publishes
// domain events to.
type Config struct {
	Brokers []string
	Topic   string
}
