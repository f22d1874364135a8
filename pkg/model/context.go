package model

// EmergencyType is the active emergency mode set by the user, if any
type EmergencyType string

const (
	EmergencyLost     EmergencyType = "lost"
	EmergencyInjury   EmergencyType = "injury"
	EmergencyWildlife EmergencyType = "wildlife"
	EmergencyOther    EmergencyType = "other"
)

// DeviceContext carries device state used to enrich the system prompt.
// Produced by an external provider; every field group is optional.
type DeviceContext struct {
	Location LocationContext `json:"location"`
	Time     TimeContext     `json:"time"`
	Device   DeviceState     `json:"device"`
	Network  NetworkState    `json:"network"`
	User     UserState       `json:"user_state"`
}

type LocationContext struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	ElevationM *float64 `json:"elevation_m"`
	AccuracyM  *float64 `json:"accuracy_m"`
}

type TimeContext struct {
	LocalTime string `json:"local_time"`
	Timezone  string `json:"timezone"`
}

type DeviceState struct {
	BatteryPercent *int `json:"battery_percent"`
	IsCharging     bool `json:"is_charging"`
}

type NetworkState struct {
	IsOffline bool `json:"is_offline"`
}

type UserState struct {
	EmergencyMode EmergencyType `json:"emergency_mode,omitempty"`
}

// ContextProvider produces the current device context on demand
type ContextProvider interface {
	DeviceContext() *DeviceContext
}

// StaticContextProvider returns a fixed context, used by the CLI and tests
type StaticContextProvider struct {
	Context *DeviceContext
}

func (p *StaticContextProvider) DeviceContext() *DeviceContext {
	return p.Context
}
