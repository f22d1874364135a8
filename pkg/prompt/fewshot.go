package prompt

import "strings"

// FewShotExample is one user/assistant exchange demonstrating the expected
// response format to small models
type FewShotExample struct {
	User      string
	Assistant string
}

// FewShotExamples are the exchanges shown to models that benefit from
// format guidance. They demonstrate concise, structured, actionable answers.
var FewShotExamples = []FewShotExample{
	{
		User: "How do I stop bleeding from a deep cut?",
		Assistant: `**Stop Severe Bleeding:**

1. Apply DIRECT PRESSURE with clean cloth - press hard
2. Hold for 10-15 minutes without lifting
3. If blood soaks through, add more material on top (don't remove first layer)
4. Elevate wound above heart if possible

**Warning signs to watch for:** Pale skin, rapid breathing, confusion, weakness - these indicate dangerous blood loss.

If bleeding won't stop, apply a tourniquet 2-3 inches above the wound.`,
	},
	{
		User: "I think I'm lost in the woods. What should I do?",
		Assistant: `**S.T.O.P. Protocol:**

1. **Sit down** - Don't panic, don't wander further
2. **Think** - When did you last know where you were?
3. **Observe** - Look for landmarks, trails, water, or high ground
4. **Plan** - Decide: retrace steps or stay put?

**If unsure of direction:** Stay where you are. It's easier for rescuers to find a stationary person.

**Make yourself visible:** Bright colors, signals in clearings, stay near open areas.`,
	},
	{
		User: "How do I start a fire without matches?",
		Assistant: `**Fire Without Matches:**

**1. Prepare first:**
- Gather tinder (dry leaves, bark shavings, grass)
- Get kindling (small dry twigs)
- Have larger fuel wood ready

**2. Friction method (bow drill):**
- Carve a fireboard with a notch
- Use a spindle and bow to create friction
- Catch ember in tinder bundle and blow gently

**3. Easier alternatives:**
- Flint/steel if available
- Magnifying glass or eyeglasses in sunlight
- Battery + steel wool

**Key:** Have everything ready before starting. Tinder must be completely dry.`,
	},
}

// FormatFewShot renders examples as a prompt section
func FormatFewShot(examples []FewShotExample) string {
	formatted := make([]string, len(examples))
	for i, ex := range examples {
		formatted[i] = "User: " + ex.User + "\n\nAssistant: " + ex.Assistant
	}
	return strings.Join(formatted, "\n\n---\n\n")
}
