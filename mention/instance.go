package mention

import (
	"fmt"
	"strings"
)

// Instance is one document: its text and the mentions found in it.
type Instance struct {
	ID       int
	Text     string
	Mentions []*Mention
}

// Len returns the number of mentions.
func (in *Instance) Len() int {
	return len(in.Mentions)
}

// WithMentions returns an instance with the same ID and text but a
// different mention list.
func (in *Instance) WithMentions(mentions []*Mention) *Instance {
	return &Instance{ID: in.ID, Text: in.Text, Mentions: mentions}
}

// PrettyPrint renders the text with every mention replaced by
// "[spot](title)". Mentions are expected in text order.
func (in *Instance) PrettyPrint() string {
	var b strings.Builder
	prev := 0

	for _, m := range in.Mentions {
		if m.Start >= prev && m.Start <= len(in.Text) {
			b.WriteString(in.Text[prev:m.Start])
		}
		fmt.Fprintf(&b, "[%s](%s)", m.Spot, m.Title)
		prev = min(max(prev, m.End), len(in.Text))
	}

	b.WriteString(in.Text[prev:])
	return b.String()
}

func (in *Instance) String() string {
	return fmt.Sprintf("Instance(%d, %q, %d mentions)", in.ID, in.Text, len(in.Mentions))
}

// Dataset is a named, ordered collection of instances.
type Dataset struct {
	Name      string
	Instances []*Instance
}

// Len returns the number of instances.
func (d *Dataset) Len() int {
	return len(d.Instances)
}

// Slice returns the instances in [start, end) as a new dataset with the same
// name. Out of range bounds are clamped; end <= 0 means "to the end".
func (d *Dataset) Slice(start, end int) *Dataset {
	n := len(d.Instances)
	if end <= 0 || end > n {
		end = n
	}
	start = min(max(start, 0), end)
	return &Dataset{Name: d.Name, Instances: d.Instances[start:end]}
}

func (d *Dataset) String() string {
	return fmt.Sprintf("%s dataset with %d instances", d.Name, len(d.Instances))
}
