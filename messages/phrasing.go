package messages

import (
	"embed"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/room4-2/tablefinder/dialog"
)

//go:embed phrasing/*.json
var phrasingFS embed.FS

// Style selects how replies are worded.
type Style struct {
	Formal bool
	Caps   bool
}

// Registry maps dialog message keys to templates in both registers.
type Registry struct {
	formal   map[string]string
	informal map[string]string
}

// NewRegistry loads the built-in phrasing tables.
func NewRegistry() (*Registry, error) {
	formal, err := loadPhrasing("phrasing/formal.json")
	if err != nil {
		return nil, err
	}
	informal, err := loadPhrasing("phrasing/informal.json")
	if err != nil {
		return nil, err
	}
	return &Registry{formal: formal, informal: informal}, nil
}

func loadPhrasing(name string) (map[string]string, error) {
	data, err := phrasingFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	var table map[string]string
	if err := sonic.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return table, nil
}

// Template returns the template for key. A key missing from the requested
// register falls back to the other one, then to the key name.
func (r *Registry) Template(key dialog.MessageKey, formal bool) string {
	primary, secondary := r.informal, r.formal
	if formal {
		primary, secondary = r.formal, r.informal
	}
	if t, ok := primary[key.String()]; ok {
		return t
	}
	if t, ok := secondary[key.String()]; ok {
		return t
	}
	return key.String()
}

// Render fills the template of msg with its bindings.
func (r *Registry) Render(msg dialog.Message, style Style) string {
	text := r.Template(msg.Key, style.Formal)
	if len(msg.Bindings) > 0 {
		pairs := make([]string, 0, len(msg.Bindings)*2)
		for k, v := range msg.Bindings {
			pairs = append(pairs, "{"+k+"}", v)
		}
		text = strings.NewReplacer(pairs...).Replace(text)
	}
	if style.Caps {
		text = strings.ToUpper(text)
	}
	return text
}

// RenderReply renders every message of reply in order.
func (r *Registry) RenderReply(reply dialog.Reply, style Style) []string {
	lines := make([]string, len(reply.Messages))
	for i, msg := range reply.Messages {
		lines[i] = r.Render(msg, style)
	}
	return lines
}
