package mqtt

import "fmt"

// Topics provides builders for the agent's MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
// All topics live under the configured namespace:
//
//	topics := mqtt.Topics{}
//	dataTopic := topics.DeviceData("smaket/iot", "RFID-Device-01")
//	// Returns: "smaket/iot/data/RFID-Device-01"
type Topics struct{}

// DeviceData returns the topic telemetry events are published to.
//
// Example: smaket/iot/data/RFID-Device-01
func (Topics) DeviceData(namespace, deviceID string) string {
	return fmt.Sprintf("%s/data/%s", namespace, deviceID)
}

// DeviceStatus returns the topic for online/offline status and LWT messages.
//
// Example: smaket/iot/status/RFID-Device-01
func (Topics) DeviceStatus(namespace, deviceID string) string {
	return fmt.Sprintf("%s/status/%s", namespace, deviceID)
}
