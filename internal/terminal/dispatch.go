package terminal

import (
	"fmt"
	"strings"
)

const (
	emptyInputMessage = `Please enter a command. Type "help" for available commands.`
	helpHint          = "Type 'help' for available commands."
)

// Registry maps command names to commands, remembering registration order
// for help output and suggestions.
type Registry struct {
	names    []string
	commands map[string]Command
}

func (r *Registry) add(cmd Command) {
	if cmd.Usage == "" {
		cmd.Usage = cmd.Name
	}
	r.names = append(r.names, cmd.Name)
	r.commands[cmd.Name] = cmd
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup finds a command by its exact registered name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Resolve runs the command named by raw. The lookup is an exact match on
// the trimmed, lower-cased input; arguments are not parsed, so any trailing
// text misses.
func (r *Registry) Resolve(raw string) Result {
	normalized := normalize(raw)
	if normalized == "" {
		return Result{Error: emptyInputMessage}
	}
	if cmd, ok := r.commands[normalized]; ok {
		return cmd.Execute()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Command '%s' not found.", raw)
	if suggestions := r.related(normalized); len(suggestions) > 0 {
		fmt.Fprintf(&b, " Did you mean: %s?", strings.Join(suggestions, ", "))
	}
	b.WriteString(" " + helpHint)
	return Result{Error: b.String()}
}

// related returns every name that contains input or is contained by it.
// Short inputs can match most of the registry; that is accepted behavior.
func (r *Registry) related(input string) []string {
	var out []string
	for _, name := range r.names {
		if strings.Contains(name, input) || strings.Contains(input, name) {
			out = append(out, name)
		}
	}
	return out
}

// SuggestionsFor returns every name starting with partial. An empty partial
// has no suggestions.
func (r *Registry) SuggestionsFor(partial string) []string {
	normalized := normalize(partial)
	if normalized == "" {
		return nil
	}
	var out []string
	for _, name := range r.names {
		if strings.HasPrefix(name, normalized) {
			out = append(out, name)
		}
	}
	return out
}

// Complete returns the completion for partial when exactly one name
// matches its prefix.
func (r *Registry) Complete(partial string) (string, bool) {
	suggestions := r.SuggestionsFor(partial)
	if len(suggestions) != 1 {
		return "", false
	}
	return suggestions[0], true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
