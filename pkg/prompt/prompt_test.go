package prompt_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/surviveos/ranger/pkg/model"
	"github.com/surviveos/ranger/pkg/prompt"
)

func ptr[T any](v T) *T { return &v }

func testContext() *model.DeviceContext {
	return &model.DeviceContext{
		Location: model.LocationContext{
			Latitude:   ptr(47.60621),
			Longitude:  ptr(-122.33207),
			ElevationM: ptr(56.4),
		},
		Time: model.TimeContext{
			LocalTime: "14:30",
			Timezone:  "PST",
		},
		Device: model.DeviceState{
			BatteryPercent: ptr(85),
		},
		Network: model.NetworkState{IsOffline: true},
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("bare persona", func(t *testing.T) {
		p := prompt.BuildSystemPrompt(nil, "")
		gt.Equal(t, p, prompt.System())
		gt.S(t, p).Contains("survival expert assistant")
		gt.S(t, p).Contains("RELEVANT SURVIVAL KNOWLEDGE")
	})

	t.Run("context block precedes persona", func(t *testing.T) {
		p := prompt.BuildSystemPrompt(testContext(), "")
		gt.True(t, strings.HasPrefix(p, "CURRENT DEVICE CONTEXT:\n"))
		gt.S(t, p).Contains("- Location: 47.6062°, -122.3321°")
		gt.S(t, p).Contains("- Elevation: 56m")
		gt.S(t, p).Contains("- Time: 14:30 PST")
		gt.S(t, p).Contains("- Battery: 85%")
		gt.S(t, p).Contains("- Network: OFFLINE")
		gt.S(t, p).Contains("Use this context to provide location-aware, time-appropriate advice.")
		gt.S(t, p).NotContains("EMERGENCY MODE")
		gt.S(t, p).NotContains("Battery is low")
	})

	t.Run("knowledge block comes last", func(t *testing.T) {
		block := "\n---\nRELEVANT SURVIVAL KNOWLEDGE:\n### Water Purification Methods\nBoil it.\n---\n"
		p := prompt.BuildSystemPrompt(nil, block)
		gt.True(t, strings.HasSuffix(p, block))
		gt.Equal(t, p, prompt.System()+"\n"+block)
	})

	t.Run("missing readings render as Unknown", func(t *testing.T) {
		p := prompt.BuildSystemPrompt(&model.DeviceContext{
			Time: model.TimeContext{LocalTime: "03:12", Timezone: "UTC"},
		}, "")
		gt.S(t, p).Contains("- Location: Unknown")
		gt.S(t, p).Contains("- Elevation: Unknown")
		gt.S(t, p).Contains("- Battery: Unknown")
		gt.S(t, p).Contains("- Network: Online")
	})

	t.Run("charging battery annotation", func(t *testing.T) {
		ctx := testContext()
		ctx.Device.IsCharging = true
		p := prompt.BuildSystemPrompt(ctx, "")
		gt.S(t, p).Contains("- Battery: 85% (charging)")
	})

	t.Run("low battery asks for brevity", func(t *testing.T) {
		ctx := testContext()
		ctx.Device.BatteryPercent = ptr(12)
		p := prompt.BuildSystemPrompt(ctx, "")
		gt.S(t, p).Contains("- Battery: 12%")
		gt.S(t, p).Contains("Battery is low. Keep responses concise")
	})

	t.Run("emergency mode is shouted", func(t *testing.T) {
		ctx := testContext()
		ctx.User.EmergencyMode = model.EmergencyWildlife
		p := prompt.BuildSystemPrompt(ctx, "")
		gt.S(t, p).Contains("- Network: OFFLINE\n- EMERGENCY MODE: WILDLIFE")
	})
}

func TestFormatFewShot(t *testing.T) {
	out := prompt.FormatFewShot(prompt.FewShotExamples)

	gt.A(t, prompt.FewShotExamples).Length(3)
	gt.S(t, out).Contains("User: How do I stop bleeding from a deep cut?")
	gt.S(t, out).Contains("Assistant: **Stop Severe Bleeding:**")
	gt.S(t, out).Contains("S.T.O.P. Protocol")
	gt.Equal(t, strings.Count(out, "\n\n---\n\n"), 2)
}
