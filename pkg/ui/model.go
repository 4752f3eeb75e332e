// Package ui renders the slot projection as an interactive terminal view:
// a scrollable window over the flattened tree with collapse, filter, sort and
// group controls wired to the collection pipeline.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/arbor/pkg/collection"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/search"
	"github.com/vanderheijden86/arbor/pkg/slots"
)

// FileChangedMsg is sent when the backing store changes on disk.
type FileChangedMsg struct{}

// sortChoice is one entry of the sort cycle bound to the "s" key.
type sortChoice struct {
	field collection.SortField[model.Record]
	label string
}

func sortCycle() []sortChoice {
	return []sortChoice{
		{collection.SortField[model.Record]{ID: "priority", Compare: model.ByPriority, Direction: collection.Ascending}, "Priority"},
		{collection.SortField[model.Record]{ID: "updated", Compare: model.ByUpdatedAt, Direction: collection.Descending}, "Updated"},
		{collection.SortField[model.Record]{ID: "title", Compare: model.ByTitle, Direction: collection.Ascending}, "Title"},
		{collection.SortField[model.Record]{ID: "value", Compare: model.ByValue, Direction: collection.Descending}, "Value"},
	}
}

// Model is the bubbletea model driving the viewer. It owns nothing but the
// cursor; all data state lives in the controller.
type Model struct {
	ctrl    *collection.Controller[model.Record]
	changes <-chan struct{}

	cursor int
	top    int
	width  int
	height int
	ready  bool

	sortIdx int
	sorts   []sortChoice

	filterInput textinput.Model
	filtering   bool

	status string
}

// Option configures a Model.
type Option func(*Model)

// WithChangeChannel binds a watcher change channel; each receive triggers a
// reload from the controller's loader.
func WithChangeChannel(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// New creates the viewer model around an assembled controller.
func New(ctrl *collection.Controller[model.Record], opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "status:open priority:<2 text"
	ti.Prompt = "/"
	ti.CharLimit = 80

	m := Model{
		ctrl:        ctrl,
		sorts:       sortCycle(),
		filterInput: ti,
	}
	for _, opt := range opts {
		opt(&m)
	}
	ctrl.Sorter().SetFields(m.sorts[0].field)
	return m
}

// Cursor returns the current slot index under the cursor.
func (m Model) Cursor() int { return m.cursor }

// SelectedRecord returns the record under the cursor, if the cursor sits on
// an item slot.
func (m Model) SelectedRecord() (model.Record, bool) {
	s, ok := m.ctrl.Slots().GetSlot(m.cursor).(slots.ItemSlot[model.Record])
	if !ok {
		return model.Record{}, false
	}
	return s.Item, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange re-arms the watcher channel read.
func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return FileChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.clampCursor()
		return m, nil

	case FileChangedMsg:
		m.reload()
		return m, m.waitForChange()

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilterInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.ctrl.Filter().Remove("query")
		m.clampCursor()
		return m, nil
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		m.applyQuery(m.filterInput.Value())
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sm := m.ctrl.Slots()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= m.bodyHeight()
	case "pgdown":
		m.cursor += m.bodyHeight()
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = sm.TotalSlots() - 1

	case "enter", " ":
		if h, ok := sm.GetSlot(m.cursor).(slots.GroupHeaderSlot[model.Record]); ok {
			sm.ToggleCollapse(h.Node.ID())
		}
	case "left", "h":
		m.collapseAtCursor()
	case "right", "l":
		if h, ok := sm.GetSlot(m.cursor).(slots.GroupHeaderSlot[model.Record]); ok {
			sm.Expand(h.Node.ID())
		}
	case "c":
		sm.CollapseAll()
	case "e":
		sm.ExpandAll()

	case "g":
		m.ctrl.Grouper().Cycle()
		m.status = "group: " + m.groupLabel()
	case "s":
		m.sortIdx = (m.sortIdx + 1) % len(m.sorts)
		m.ctrl.Sorter().SetFields(m.sorts[m.sortIdx].field)
		m.status = "sort: " + m.sorts[m.sortIdx].label
	case "o":
		m.ctrl.Sorter().FlipDirection(m.sorts[m.sortIdx].field.ID)

	case "/":
		m.filtering = true
		m.filterInput.SetValue("")
		m.filterInput.Focus()
		return m, textinput.Blink

	case "r":
		m.reload()
	}
	m.clampCursor()
	return m, nil
}

// collapseAtCursor collapses the header under the cursor, or the enclosing
// group when the cursor sits on an item.
func (m *Model) collapseAtCursor() {
	sm := m.ctrl.Slots()
	switch s := sm.GetSlot(m.cursor).(type) {
	case slots.GroupHeaderSlot[model.Record]:
		sm.Collapse(s.Node.ID())
	case slots.ItemSlot[model.Record]:
		for i := m.cursor - 1; i >= 0; i-- {
			if h, ok := sm.GetSlot(i).(slots.GroupHeaderSlot[model.Record]); ok && h.Depth < s.Depth {
				sm.Collapse(h.Node.ID())
				m.cursor = i
				return
			}
		}
	}
}

func (m *Model) reload() {
	err := m.ctrl.Refresh(context.Background())
	switch {
	case errors.Is(err, collection.ErrNoLoader):
		m.status = "no data source bound"
	case err != nil:
		m.status = "reload failed: " + err.Error()
	default:
		m.status = fmt.Sprintf("reloaded %d records", len(m.ctrl.Items()))
	}
	m.clampCursor()
}

// applyQuery installs the parsed query as the projection filter, or removes
// it for a blank query. Parse errors leave the previous filter in place.
func (m *Model) applyQuery(query string) {
	q, err := search.Parse(query)
	if err != nil {
		m.status = err.Error()
		return
	}
	if q.IsEmpty() {
		m.ctrl.Filter().Remove("query")
		return
	}
	m.ctrl.Filter().Set("query", q.Predicate())
	m.status = "filter: " + q.Raw()
}

func (m *Model) clampCursor() {
	total := m.ctrl.Slots().TotalSlots()
	if m.cursor >= total {
		m.cursor = total - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	body := m.bodyHeight()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+body {
		m.top = m.cursor - body + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

func (m Model) bodyHeight() int {
	h := m.height - 4 // title, divider, divider, footer
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) groupLabel() string {
	if opt := m.ctrl.Grouper().Active(); opt != nil {
		return opt.Label
	}
	return "none"
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	sm := m.ctrl.Slots()

	title := headerStyle.Render("arbor") + mutedStyle.Render(fmt.Sprintf(
		"  %d records · %d slots · group %s · sort %s",
		len(m.ctrl.Items()), sm.TotalSlots(), m.groupLabel(), m.sorts[m.sortIdx].label))

	var body strings.Builder
	window := sm.GetSlotRange(m.top, m.bodyHeight())
	for i, s := range window {
		body.WriteString(m.renderSlot(s, m.top+i == m.cursor))
		body.WriteByte('\n')
	}
	for i := len(window); i < m.bodyHeight(); i++ {
		body.WriteByte('\n')
	}

	footer := mutedStyle.Render("j/k move · space toggle · c/e fold all · g group · s sort · o order · / filter · r reload · q quit")
	if m.filtering {
		footer = m.filterInput.View()
	}
	if m.status != "" && !m.filtering {
		footer = statusStyle.Render(m.status) + "  " + footer
	}

	return strings.Join([]string{
		title,
		RenderDivider(m.width),
		strings.TrimRight(body.String(), "\n"),
		RenderDivider(m.width),
		footer,
	}, "\n")
}

func (m Model) renderSlot(s slots.Slot[model.Record], selected bool) string {
	indent := strings.Repeat("  ", s.SlotDepth())
	var line string
	switch s := s.(type) {
	case slots.GroupHeaderSlot[model.Record]:
		arrow := "▾"
		if s.Collapsed {
			arrow = "▸"
		}
		label := s.Node.ID()
		if i := strings.LastIndex(label, "/"); i >= 0 {
			label = label[i+1:]
		}
		line = fmt.Sprintf("%s%s %s %s", indent, arrow,
			groupStyle.Render(label),
			mutedStyle.Render(fmt.Sprintf("(%d/%d)", s.ItemCount, s.TotalCount)))
		if v, ok := s.Aggregates["value"]; ok {
			line += " " + mutedStyle.Render(fmt.Sprintf("Σ%.0f", v))
		}
	case slots.ItemSlot[model.Record]:
		r := s.Item
		text := truncate(r.Title, m.width-lipgloss.Width(indent)-22)
		line = fmt.Sprintf("%s  %s %s %s %s", indent,
			RenderPriorityBadge(r.Priority),
			RenderStatusBadge(string(r.Status)),
			mutedStyle.Render(r.ID),
			text)
	}
	if selected {
		return cursorStyle.Render("▶") + line
	}
	return " " + line
}
