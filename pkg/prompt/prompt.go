// Package prompt assembles the system prompt sent to the generation engine:
// the survival persona, an optional device context block, and the retrieved
// knowledge section.
package prompt

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/surviveos/ranger/pkg/model"
)

//go:embed prompt/system.md
var systemPromptRaw string

// lowBatteryPercent is the level below which responses are asked to stay
// short to conserve power
const lowBatteryPercent = 20

// System returns the base survival assistant persona
func System() string {
	return strings.TrimRight(systemPromptRaw, "\n")
}

// BuildSystemPrompt composes the full system prompt. The device context
// block, when present, goes before the persona so small models see it first;
// the knowledge block goes last, where the persona tells the model to look
// for it. Both are optional.
func BuildSystemPrompt(deviceCtx *model.DeviceContext, knowledgeBlock string) string {
	prompt := System()

	if deviceCtx != nil {
		prompt = contextBlock(deviceCtx) + prompt
	}

	if knowledgeBlock != "" {
		prompt = prompt + "\n" + knowledgeBlock
	}

	return prompt
}

func contextBlock(ctx *model.DeviceContext) string {
	location := "Unknown"
	if ctx.Location.Latitude != nil && ctx.Location.Longitude != nil {
		location = fmt.Sprintf("%.4f°, %.4f°", *ctx.Location.Latitude, *ctx.Location.Longitude)
	}

	elevation := "Unknown"
	if ctx.Location.ElevationM != nil {
		elevation = fmt.Sprintf("%dm", int(math.Round(*ctx.Location.ElevationM)))
	}

	battery := "Unknown"
	if ctx.Device.BatteryPercent != nil {
		battery = fmt.Sprintf("%d%%", *ctx.Device.BatteryPercent)
		if ctx.Device.IsCharging {
			battery += " (charging)"
		}
	}

	network := "Online"
	if ctx.Network.IsOffline {
		network = "OFFLINE"
	}

	emergency := ""
	if ctx.User.EmergencyMode != "" {
		emergency = fmt.Sprintf("\n- EMERGENCY MODE: %s", strings.ToUpper(string(ctx.User.EmergencyMode)))
	}

	lowBattery := ""
	if ctx.Device.BatteryPercent != nil && *ctx.Device.BatteryPercent < lowBatteryPercent {
		lowBattery = "- Battery is low. Keep responses concise to help preserve battery.\n"
	}

	return fmt.Sprintf(`CURRENT DEVICE CONTEXT:
- Location: %s
- Elevation: %s
- Time: %s %s
- Battery: %s
- Network: %s%s

Use this context to provide location-aware, time-appropriate advice.
%s
`, location, elevation, ctx.Time.LocalTime, ctx.Time.Timezone, battery, network, emergency, lowBattery)
}
