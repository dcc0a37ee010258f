package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "device data",
			got:  topics.DeviceData("smaket/iot", "RFID-Device-01"),
			want: "smaket/iot/data/RFID-Device-01",
		},
		{
			name: "device status",
			got:  topics.DeviceStatus("smaket/iot", "RFID-Device-01"),
			want: "smaket/iot/status/RFID-Device-01",
		},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
