package model

// ProviderConfig holds the PayOS credentials for one pay channel.
// Loaded by id, never mutated by the gateway.
type ProviderConfig struct {
	ID          string `json:"id"`
	APIKey      string `json:"api_key"`
	ClientID    string `json:"client_id"`
	ChecksumKey string `json:"-"` // signing secret; never serialized
}

// DeviceTarget is the machine binding resolved for a paid transaction:
// where to send the command and how to build it.
type DeviceTarget struct {
	EndpointID    string `json:"endpoint_id"`
	DeviceKey     string `json:"-"`
	CommandPrefix string `json:"command_prefix"`
}
