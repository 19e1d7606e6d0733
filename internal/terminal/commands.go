package terminal

import (
	"fmt"
	"strings"

	"github.com/Zachkp/termfolio/internal/portfolio"
)

const (
	groupNavigation = "Navigation Commands"
	groupUtility    = "Utility Commands"
)

// NewRegistry builds the fixed command set over content. The theme and
// portfolio commands act on app.
func NewRegistry(content *portfolio.Content, app *AppContext) *Registry {
	r := &Registry{commands: make(map[string]Command)}
	f := formatter{content: content}

	r.add(Command{
		Name:        "about",
		Description: "Display personal information and bio",
		Group:       groupNavigation,
		Execute:     ok(f.about),
	})
	r.add(Command{
		Name:        "technologies",
		Description: "Show technical skills and tools",
		Group:       groupNavigation,
		Execute:     ok(f.technologies),
	})
	r.add(Command{
		Name:        "experience",
		Description: "List work experience and achievements",
		Group:       groupNavigation,
		Execute:     ok(f.experience),
	})
	r.add(Command{
		Name:        "projects",
		Description: "Display portfolio projects",
		Group:       groupNavigation,
		Execute:     ok(f.projects),
	})
	r.add(Command{
		Name:        "contact",
		Description: "Show contact information",
		Group:       groupNavigation,
		Execute:     ok(f.contact),
	})
	r.add(Command{
		Name:        "help",
		Description: "Display this help message",
		Group:       groupUtility,
		Execute:     ok(func() string { return f.help(r) }),
	})
	r.add(Command{
		Name:        "clear",
		Description: "Clear the terminal screen",
		Group:       groupUtility,
		Execute:     ok(func() string { return ClearSentinel }),
	})
	r.add(Command{
		Name:        "theme",
		Description: "Toggle between dark and light themes",
		Group:       groupUtility,
		Execute: func() Result {
			next := app.ToggleTheme()
			return Result{Success: true, Content: fmt.Sprintf("Theme switched to %s mode", next)}
		},
	})
	r.add(Command{
		Name:        "portfolio",
		Description: "View original portfolio website",
		Group:       groupUtility,
		Execute: func() Result {
			site := content.Site()
			out := fmt.Sprintf("Opening original portfolio: %s", site.PortfolioURL)
			if site.PortfolioNote != "" {
				out += "\n\n" + site.PortfolioNote
			}
			if err := app.Open(site.PortfolioURL); err != nil {
				out += fmt.Sprintf("\n\n(could not open a browser: %v)", err)
			}
			return Result{Success: true, Content: out}
		},
	})
	return r
}

func ok(render func() string) func() Result {
	return func() Result {
		return Result{Success: true, Content: render()}
	}
}

type formatter struct {
	content *portfolio.Content
}

func (f formatter) about() string {
	p := f.content.Personal()
	return fmt.Sprintf("Name: %s\nTitle: %s\nLocation: %s\n\nEducation:\n%s",
		p.Name, p.Title, p.Location, p.Education)
}

func (f formatter) technologies() string {
	var b strings.Builder
	for i, cat := range f.content.Technologies() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s:\n", cat.Category)
		for _, item := range cat.Items {
			fmt.Fprintf(&b, "  • %-20s [%s]\n", item.Name, item.Proficiency)
		}
	}
	return strings.TrimSpace(b.String())
}

func (f formatter) experience() string {
	var b strings.Builder
	for i, exp := range f.content.Experience() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s | %s\n%s", exp.Company, exp.Role, exp.Duration)
		if exp.Location != "" {
			fmt.Fprintf(&b, " | %s", exp.Location)
		}
	}
	return strings.TrimSpace(b.String())
}

func (f formatter) projects() string {
	var b strings.Builder
	for i, p := range f.content.Projects() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s\nTechnologies: %s", p.Title, strings.Join(p.Technologies, ", "))
		if p.LiveURL != "" {
			fmt.Fprintf(&b, "\nLive Demo: %s", p.LiveURL)
		}
		if p.GitHubURL != "" {
			fmt.Fprintf(&b, "\nGitHub: %s", p.GitHubURL)
		}
	}
	return strings.TrimSpace(b.String())
}

func (f formatter) contact() string {
	p := f.content.Personal()
	var b strings.Builder
	fmt.Fprintf(&b, "Email: %s\n", p.Email)
	if p.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", p.Phone)
	}
	if p.LinkedIn != "" {
		fmt.Fprintf(&b, "LinkedIn: %s\n", p.LinkedIn)
	}
	if p.GitHub != "" {
		fmt.Fprintf(&b, "GitHub: %s\n", p.GitHub)
	}
	fmt.Fprintf(&b, "Location: %s\n\n", p.Location)
	b.WriteString("Feel free to reach out for collaborations, opportunities, or just to chat!")
	return b.String()
}

func (f formatter) help(r *Registry) string {
	var b strings.Builder
	for _, group := range []string{groupNavigation, groupUtility} {
		fmt.Fprintf(&b, "%s:\n", group)
		for _, name := range r.names {
			cmd := r.commands[name]
			if cmd.Group == group {
				fmt.Fprintf(&b, "  %-14s%s\n", cmd.Name, cmd.Description)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(`Tips:
• Use arrow keys (↑/↓) to navigate command history
• Press Tab for command auto-completion
• Commands are case-insensitive`)
	return b.String()
}
