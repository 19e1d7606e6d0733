// Package portfolio holds the static facts the terminal commands format:
// personal info, skills, work history, projects and site settings.
package portfolio

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultDocument []byte

// Topic names a read-only slice of the content.
type Topic string

const (
	TopicPersonal     Topic = "personal"
	TopicTechnologies Topic = "technologies"
	TopicExperience   Topic = "experience"
	TopicProjects     Topic = "projects"
	TopicSite         Topic = "site"
)

type Personal struct {
	Name      string   `yaml:"name" json:"name"`
	Title     string   `yaml:"title" json:"title"`
	Bio       string   `yaml:"bio" json:"bio"`
	Education string   `yaml:"education" json:"education"`
	Location  string   `yaml:"location" json:"location"`
	Email     string   `yaml:"email" json:"email"`
	Phone     string   `yaml:"phone,omitempty" json:"phone,omitempty"`
	LinkedIn  string   `yaml:"linkedin,omitempty" json:"linkedin,omitempty"`
	GitHub    string   `yaml:"github,omitempty" json:"github,omitempty"`
	Interests []string `yaml:"interests" json:"interests"`
}

type Skill struct {
	Name        string `yaml:"name" json:"name"`
	Proficiency string `yaml:"proficiency" json:"proficiency"`
}

type TechCategory struct {
	Category string  `yaml:"category" json:"category"`
	Items    []Skill `yaml:"items" json:"items"`
}

type Experience struct {
	Company          string   `yaml:"company" json:"company"`
	Role             string   `yaml:"role" json:"role"`
	Duration         string   `yaml:"duration" json:"duration"`
	Location         string   `yaml:"location,omitempty" json:"location,omitempty"`
	Responsibilities []string `yaml:"responsibilities" json:"responsibilities"`
	Achievements     []string `yaml:"achievements" json:"achievements"`
}

type Project struct {
	Title        string   `yaml:"title" json:"title"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	LiveURL      string   `yaml:"live_url,omitempty" json:"live_url,omitempty"`
	GitHubURL    string   `yaml:"github_url,omitempty" json:"github_url,omitempty"`
}

// Site carries the terminal chrome: the prompt echoed before each input
// line, the welcome line, and the link behind the portfolio command.
type Site struct {
	Prompt        string `yaml:"prompt" json:"prompt"`
	Welcome       string `yaml:"welcome" json:"welcome"`
	PortfolioURL  string `yaml:"portfolio_url" json:"portfolio_url"`
	PortfolioNote string `yaml:"portfolio_note" json:"portfolio_note"`
}

type document struct {
	Site         Site           `yaml:"site"`
	Personal     Personal       `yaml:"personal"`
	Technologies []TechCategory `yaml:"technologies"`
	Experience   []Experience   `yaml:"experience"`
	Projects     []Project      `yaml:"projects"`
}

// Content is the immutable table. The zero value is not useful; build one
// with Default, Load or Parse.
type Content struct {
	doc document
}

// Default returns the content compiled into the binary.
func Default() (*Content, error) {
	return Parse(defaultDocument)
}

// Load reads a YAML content document from path.
func Load(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML content document.
func Parse(data []byte) (*Content, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if doc.Personal.Name == "" {
		return nil, errors.New("content is missing personal.name")
	}
	if doc.Site.Prompt == "" {
		doc.Site.Prompt = "$"
	}
	if doc.Site.Welcome == "" {
		doc.Site.Welcome = "Welcome! Type 'help' to see available commands."
	}
	return &Content{doc: doc}, nil
}

func (c *Content) Personal() Personal {
	p := c.doc.Personal
	p.Interests = append([]string(nil), p.Interests...)
	return p
}

func (c *Content) Technologies() []TechCategory {
	out := make([]TechCategory, len(c.doc.Technologies))
	for i, cat := range c.doc.Technologies {
		out[i] = TechCategory{
			Category: cat.Category,
			Items:    append([]Skill(nil), cat.Items...),
		}
	}
	return out
}

func (c *Content) Experience() []Experience {
	out := make([]Experience, len(c.doc.Experience))
	for i, exp := range c.doc.Experience {
		exp.Responsibilities = append([]string(nil), exp.Responsibilities...)
		exp.Achievements = append([]string(nil), exp.Achievements...)
		out[i] = exp
	}
	return out
}

func (c *Content) Projects() []Project {
	out := make([]Project, len(c.doc.Projects))
	for i, p := range c.doc.Projects {
		p.Technologies = append([]string(nil), p.Technologies...)
		out[i] = p
	}
	return out
}

func (c *Content) Site() Site {
	return c.doc.Site
}

// Section returns the copy held under topic, or false for an unknown topic.
func (c *Content) Section(topic Topic) (any, bool) {
	switch topic {
	case TopicPersonal:
		return c.Personal(), true
	case TopicTechnologies:
		return c.Technologies(), true
	case TopicExperience:
		return c.Experience(), true
	case TopicProjects:
		return c.Projects(), true
	case TopicSite:
		return c.Site(), true
	}
	return nil, false
}
