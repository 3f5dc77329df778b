package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/theme"
	"cytodash/version"
)

// SampleSource provides the rows and filter values shown by the browser
type SampleSource interface {
	DistinctValues(ctx context.Context, field string) ([]string, error)
	FilteredView(ctx context.Context, filter domain.SampleFilter) ([]domain.WideRow, error)
}

// filterFields are the fields the browser can cycle a filter over, in key order
var filterFields = []string{domain.FieldProject, domain.FieldCondition, domain.FieldTreatment, domain.FieldResponse}

type browserKeys struct {
	Clear     key.Binding
	Condition key.Binding
	Detail    key.Binding
	Project   key.Binding
	Quit      key.Binding
	Response  key.Binding
	Treatment key.Binding
}

func newBrowserKeys() browserKeys {
	return browserKeys{
		Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		Condition: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "condition")),
		Detail:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Project:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "project")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
		Response:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "response")),
		Treatment: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "treatment")),
	}
}

func (k browserKeys) help() []key.Binding {
	return []key.Binding{k.Detail, k.Project, k.Condition, k.Treatment, k.Response, k.Clear, k.Quit}
}

// Messages
type (
	browserErrMsg    struct{ err error }
	optionsLoadedMsg struct{ options map[string][]string }
	rowsLoadedMsg    struct{ rows []domain.WideRow }
)

// Browser is a Bubble Tea model listing samples with cycling filters and a detail pane
type Browser struct {
	ctx     context.Context
	detail  bool
	err     error
	filter  domain.SampleFilter
	keys    browserKeys
	options map[string][]string
	rows    []domain.WideRow
	source  SampleSource
	table   table.Model
	width   int
}

var browserColumns = []table.Column{
	{Title: "sample", Width: 12},
	{Title: "project", Width: 10},
	{Title: "condition", Width: 12},
	{Title: "treatment", Width: 10},
	{Title: "response", Width: 9},
	{Title: "type", Width: 7},
	{Title: "time", Width: 5},
	{Title: "total", Width: 10},
}

// NewBrowser creates a sample browser reading from source
func NewBrowser(ctx context.Context, source SampleSource) *Browser {
	t := table.New(
		table.WithColumns(browserColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = theme.TableHeaderStyle.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true)
	styles.Selected = theme.TableSelectedStyle
	t.SetStyles(styles)

	return &Browser{
		ctx:     ctx,
		keys:    newBrowserKeys(),
		options: map[string][]string{},
		source:  source,
		table:   t,
		width:   80,
	}
}

// RunBrowser starts the browser full screen and blocks until the user quits
func RunBrowser(ctx context.Context, source SampleSource) error {
	logging.Logger.Info("Starting sample browser")
	p := tea.NewProgram(NewBrowser(ctx, source), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Logger.Error("Sample browser error", "error", err)
		return fmt.Errorf("error running sample browser: %w", err)
	}
	return nil
}

func (b *Browser) Init() tea.Cmd {
	return tea.Batch(b.loadOptions(), b.loadRows())
}

func (b *Browser) loadOptions() tea.Cmd {
	return func() tea.Msg {
		options := make(map[string][]string, len(filterFields))
		for _, field := range filterFields {
			values, err := b.source.DistinctValues(b.ctx, field)
			if err != nil {
				return browserErrMsg{err: err}
			}
			options[field] = values
		}
		return optionsLoadedMsg{options: options}
	}
}

func (b *Browser) loadRows() tea.Cmd {
	filter := b.filter
	return func() tea.Msg {
		rows, err := b.source.FilteredView(b.ctx, filter)
		if err != nil {
			return browserErrMsg{err: err}
		}
		return rowsLoadedMsg{rows: rows}
	}
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title, filter line, header and help
		b.table.SetHeight(max(msg.Height-8, 3))
		b.width = msg.Width
		return b, nil

	case browserErrMsg:
		logging.Logger.Error("Sample browser query failed", "error", msg.err)
		b.err = msg.err
		return b, nil

	case optionsLoadedMsg:
		b.options = msg.options
		return b, nil

	case rowsLoadedMsg:
		b.err = nil
		b.rows = msg.rows
		b.table.SetRows(tableRows(msg.rows))
		b.table.SetCursor(0)
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			if b.detail && msg.String() == "esc" {
				b.detail = false
				return b, nil
			}
			return b, tea.Quit
		case key.Matches(msg, b.keys.Detail):
			b.detail = !b.detail
			return b, nil
		case key.Matches(msg, b.keys.Clear):
			b.filter = domain.SampleFilter{}
			return b, b.loadRows()
		case key.Matches(msg, b.keys.Project):
			b.cycle(domain.FieldProject)
			return b, b.loadRows()
		case key.Matches(msg, b.keys.Condition):
			b.cycle(domain.FieldCondition)
			return b, b.loadRows()
		case key.Matches(msg, b.keys.Treatment):
			b.cycle(domain.FieldTreatment)
			return b, b.loadRows()
		case key.Matches(msg, b.keys.Response):
			b.cycle(domain.FieldResponse)
			return b, b.loadRows()
		}
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

// cycle moves the filter on field to the next distinct value, and clears it
// after the last one
func (b *Browser) cycle(field string) {
	values := b.options[field]
	current := b.filterValues(field)

	var next []string
	switch {
	case len(values) == 0:
	case len(*current) == 0:
		next = []string{values[0]}
	default:
		for i, v := range values {
			if v == (*current)[0] && i+1 < len(values) {
				next = []string{values[i+1]}
				break
			}
		}
	}
	*current = next
	logging.Logger.Debug("Browser filter changed", "field", field, "values", next)
}

func (b *Browser) filterValues(field string) *[]string {
	switch field {
	case domain.FieldProject:
		return &b.filter.Projects
	case domain.FieldCondition:
		return &b.filter.Conditions
	case domain.FieldTreatment:
		return &b.filter.Treatments
	default:
		return &b.filter.Responses
	}
}

// Selected returns the sample under the cursor, if any
func (b *Browser) Selected() (domain.WideRow, bool) {
	i := b.table.Cursor()
	if i < 0 || i >= len(b.rows) {
		return domain.WideRow{}, false
	}
	return b.rows[i], true
}

func (b *Browser) View() string {
	var s strings.Builder

	s.WriteString(theme.AppNameStyle.Render("cytodash"))
	s.WriteString(" ")
	s.WriteString(theme.VersionStyle.Render(version.Version))
	s.WriteString("  ")
	s.WriteString(theme.SubtitleStyle.Render(fmt.Sprintf("%d samples", len(b.rows))))
	s.WriteString("\n")
	s.WriteString(b.filterLine())
	s.WriteString("\n\n")

	body := b.table.View()
	if b.detail {
		if row, ok := b.Selected(); ok {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ",
				theme.DetailBoxStyle.Render(RenderKeyValues(SamplePairs(row))))
		}
	}
	s.WriteString(body)
	s.WriteString("\n")

	if b.err != nil {
		s.WriteString(theme.ErrorStyle.Render(formatError(b.err, b.width)))
		s.WriteString("\n")
	}
	s.WriteString(b.helpLine())
	return s.String()
}

func (b *Browser) filterLine() string {
	if b.filter.IsEmpty() {
		return theme.HelpLabelStyle.Render("no filters")
	}
	var parts []string
	for _, field := range filterFields {
		if values := *b.filterValues(field); len(values) > 0 {
			parts = append(parts, theme.HelpLabelStyle.Render(field+"=")+theme.HelpShortcutStyle.Render(strings.Join(values, ",")))
		}
	}
	return strings.Join(parts, "  ")
}

func (b *Browser) helpLine() string {
	var parts []string
	for _, k := range b.keys.help() {
		h := k.Help()
		parts = append(parts, theme.HelpShortcutStyle.Render(h.Key)+" "+theme.HelpLabelStyle.Render(h.Desc))
	}
	return theme.HelpStyle.Render(strings.Join(parts, " • "))
}

func tableRows(rows []domain.WideRow) []table.Row {
	result := make([]table.Row, len(rows))
	for i, r := range rows {
		v := r.Values()
		result[i] = table.Row{
			r.Sample.SampleID,
			formatValue(v[domain.FieldProject]),
			formatValue(v[domain.FieldCondition]),
			formatValue(v[domain.FieldTreatment]),
			formatValue(v[domain.FieldResponse]),
			formatValue(v[domain.FieldSampleType]),
			formatValue(v[domain.FieldTimeFromTreatmentStart]),
			strconv.Itoa(r.Total()),
		}
	}
	return result
}
