package knowledge

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidPriority = goerr.New("invalid priority")
	ErrUnknownTopic    = goerr.New("unknown topic")
)

// Priority ranks how critical a knowledge entry is during retrieval.
// Critical and high entries get a score boost and are preferred by the
// topic-scoped fallback.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Validate checks if the priority is valid
func (p Priority) Validate() error {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	default:
		return goerr.Wrap(ErrInvalidPriority, "unknown priority", goerr.V("priority", p))
	}
}

// boost is the multiplier applied to an entry's total relevance score
func (p Priority) boost() float64 {
	switch p {
	case PriorityCritical:
		return 1.5
	case PriorityHigh:
		return 1.2
	default:
		return 1.0
	}
}

// TopicID identifies a survival knowledge topic. The set is closed; two
// aliases map onto existing topics rather than owning entries themselves.
type TopicID string

const (
	TopicFirstAid   TopicID = "first-aid"
	TopicWater      TopicID = "water"
	TopicShelter    TopicID = "shelter"
	TopicNavigation TopicID = "navigation"
	TopicFire       TopicID = "fire"
	TopicSignaling  TopicID = "signaling"
	TopicFood       TopicID = "food"
	TopicPsychology TopicID = "psychology"

	// Aliases
	TopicWeather TopicID = "weather" // weather relates to shelter
	TopicAnimals TopicID = "animals" // animals relates to food
)

// canonicalTopics is the enumeration order of topics that own entries
var canonicalTopics = []TopicID{
	TopicFirstAid,
	TopicWater,
	TopicShelter,
	TopicNavigation,
	TopicFire,
	TopicSignaling,
	TopicFood,
	TopicPsychology,
}

// topicAliases maps alias IDs to the canonical topic they share
var topicAliases = map[TopicID]TopicID{
	TopicWeather: TopicShelter,
	TopicAnimals: TopicFood,
}

// Canonical resolves an alias to its canonical topic ID. Non-alias IDs are
// returned unchanged; validity is not checked here.
func (t TopicID) Canonical() TopicID {
	if target, ok := topicAliases[t]; ok {
		return target
	}
	return t
}

// Entry is a single knowledge item. Immutable once loaded.
type Entry struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Priority Priority `yaml:"priority"`
	Keywords []string `yaml:"keywords"`
	Content  string   `yaml:"content"`
}

// Topic groups entries under a named survival domain
type Topic struct {
	ID          TopicID  `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Entries     []*Entry `yaml:"entries"`
}

// CachedQA is a pre-vetted question/answer pair served without generation
// when the cache matcher is confident enough
type CachedQA struct {
	ID             string   `yaml:"id"`
	Question       string   `yaml:"question"`
	Keywords       []string `yaml:"keywords"`
	Category       string   `yaml:"category"`
	RelatedEntryID string   `yaml:"related_entry_id,omitempty"`
	Answer         string   `yaml:"answer"`
}
