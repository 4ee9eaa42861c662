package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound messages at 1 MiB, matching the default
// limit on common brokers. Scene event payloads are a few hundred
// bytes, so hitting this indicates a bug upstream.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic at the given QoS, waiting up to the
// publish timeout for the broker acknowledgment. Retained messages
// should be reserved for state topics such as system status; scene
// events are transient and published unretained.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %w after %v", ErrPublishFailed, ErrTimeout, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
