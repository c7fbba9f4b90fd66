package mqtt

import "fmt"

// TopicPrefixDevice is the base for all device topics.
const TopicPrefixDevice = "device"

// Topics builds the three topics owned by one device.
//
//	topics := mqtt.NewTopics("a1b2c3")
//	topics.Data()    // "device/a1b2c3/data"
//	topics.Command() // "device/a1b2c3/command"
//	topics.Status()  // "device/a1b2c3/status"
type Topics struct {
	data    string
	command string
	status  string
}

// NewTopics derives the device topics from its EUI.
func NewTopics(eui string) Topics {
	return Topics{
		data:    fmt.Sprintf("%s/%s/data", TopicPrefixDevice, eui),
		command: fmt.Sprintf("%s/%s/command", TopicPrefixDevice, eui),
		status:  fmt.Sprintf("%s/%s/status", TopicPrefixDevice, eui),
	}
}

// Data is the device→broker telemetry topic.
func (t Topics) Data() string { return t.data }

// Command is the broker→device control topic the device subscribes to.
func (t Topics) Command() string { return t.command }

// Status is the device→broker liveness topic (online marker, heartbeats, will).
func (t Topics) Status() string { return t.status }
