package knowledge

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yml
var embeddedData embed.FS

const cachedQAFile = "cached_qa.yml"

// Corpus is the loaded, immutable knowledge base: topical entries plus the
// cached Q&A set. All lookup and scoring operations are pure functions of
// the corpus and their inputs.
type Corpus struct {
	topics map[TopicID]*Topic
	cached []*CachedQA
}

// New loads the corpus shipped with the binary
func New() (*Corpus, error) {
	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open embedded corpus")
	}
	return load(sub)
}

// LoadDir loads a corpus from YAML files in an external directory, allowing
// the shipped data to be replaced without rebuilding. Files are matched with
// a *.yml glob; a cached_qa.yml file, if present, supplies the Q&A cache.
func LoadDir(dir string) (*Corpus, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*.yml")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob corpus directory", goerr.V("dir", dir))
	}
	if len(matches) == 0 {
		return nil, goerr.New("no corpus files found", goerr.V("dir", dir))
	}
	return load(os.DirFS(dir))
}

func load(fsys fs.FS) (*Corpus, error) {
	c := &Corpus{
		topics: make(map[TopicID]*Topic),
	}

	files, err := fs.Glob(fsys, "*.yml")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list corpus files")
	}

	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read corpus file", goerr.V("file", name))
		}

		if filepath.Base(name) == cachedQAFile {
			var doc struct {
				Entries []*CachedQA `yaml:"entries"`
			}
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return nil, goerr.Wrap(err, "failed to parse cached QA file", goerr.V("file", name))
			}
			c.cached = doc.Entries
			continue
		}

		var topic Topic
		if err := yaml.Unmarshal(data, &topic); err != nil {
			return nil, goerr.Wrap(err, "failed to parse topic file", goerr.V("file", name))
		}
		if topic.ID == "" {
			return nil, goerr.New("topic file has no id", goerr.V("file", name))
		}
		for _, e := range topic.Entries {
			if err := e.Priority.Validate(); err != nil {
				return nil, goerr.Wrap(err, "bad entry priority",
					goerr.V("topic", topic.ID), goerr.V("entry", e.ID))
			}
		}
		c.topics[topic.ID] = &topic
	}

	for _, id := range canonicalTopics {
		if _, ok := c.topics[id]; !ok {
			return nil, goerr.Wrap(ErrUnknownTopic, "corpus is missing a topic", goerr.V("topic", id))
		}
	}

	return c, nil
}

// Topic returns the topic for the given ID, resolving aliases
func (c *Corpus) Topic(id TopicID) (*Topic, bool) {
	t, ok := c.topics[id.Canonical()]
	return t, ok
}

// Topics returns the canonical topics in enumeration order
func (c *Corpus) Topics() []*Topic {
	topics := make([]*Topic, 0, len(canonicalTopics))
	for _, id := range canonicalTopics {
		topics = append(topics, c.topics[id])
	}
	return topics
}

// AllEntries flattens every topic into a single list, deduplicated by entry
// ID. First occurrence in topic enumeration order wins.
func (c *Corpus) AllEntries() []*Entry {
	seen := make(map[string]bool)
	var entries []*Entry
	for _, id := range canonicalTopics {
		for _, e := range c.topics[id].Entries {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			entries = append(entries, e)
		}
	}
	return entries
}

// Entry looks up a single entry by its globally unique ID
func (c *Corpus) Entry(id string) (*Entry, bool) {
	for _, e := range c.AllEntries() {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// CachedAnswers returns the loaded Q&A cache in file order
func (c *Corpus) CachedAnswers() []*CachedQA {
	return c.cached
}
