package screen

import "encoding/json"

// Template is a declarative UI description the host renders. Every concrete
// template encodes with a "type" discriminator.
type Template interface {
	TemplateType() string
}

// Action is a tappable button; the host posts ID back through OnAction.
type Action struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Row is one title plus zero or more lines of text.
type Row struct {
	Title string   `json:"title"`
	Texts []string `json:"texts,omitempty"`
}

// NewRow builds a Row with the given text lines.
func NewRow(title string, texts ...string) Row {
	return Row{Title: title, Texts: texts}
}

// Pane is an ordered list of rows. Loading asks the host to show a progress
// indicator next to them.
type Pane struct {
	Rows    []Row `json:"rows"`
	Loading bool  `json:"loading,omitempty"`
}

type PaneTemplate struct {
	Title        string   `json:"title"`
	HeaderAction string   `json:"header_action,omitempty"`
	Pane         Pane     `json:"pane"`
	ActionStrip  []Action `json:"action_strip,omitempty"`
}

type MessageTemplate struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Actions []Action `json:"actions,omitempty"`
}

type Tab struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Contents Template `json:"contents"`
}

type TabTemplate struct {
	Tabs        []Tab  `json:"tabs"`
	ActiveTabID string `json:"active_tab_id"`
}

func (PaneTemplate) TemplateType() string    { return "pane" }
func (MessageTemplate) TemplateType() string { return "message" }
func (TabTemplate) TemplateType() string     { return "tab" }

func (t PaneTemplate) MarshalJSON() ([]byte, error) {
	type alias PaneTemplate
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{t.TemplateType(), alias(t)})
}

func (t MessageTemplate) MarshalJSON() ([]byte, error) {
	type alias MessageTemplate
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{t.TemplateType(), alias(t)})
}

func (t TabTemplate) MarshalJSON() ([]byte, error) {
	type alias TabTemplate
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{t.TemplateType(), alias(t)})
}
