package tui

import (
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/search"
	"github.com/quirbit/qb/internal/store"
)

// Mode is the current input mode of the app.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirmDelete
)

// App is the main bubbletea model for the link browser.
type App struct {
	links      *store.LinkStore
	categories *store.CategoryStore
	keys       KeyMap
	styles     Styles

	mode  Mode
	query search.Query
	input textinput.Model

	cursor   int
	visible  []model.Link
	facets   []string
	facetIdx int

	pendingDelete string // link ID awaiting confirmation

	status  string
	failed  bool // status is an error message
	hasG    bool // first g of a gg sequence seen
	width   int
	height  int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Links      *store.LinkStore
	Categories *store.CategoryStore
	Keys       *KeyMap // optional, uses default if nil
	Styles     *Styles // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	input := textinput.New()
	input.Placeholder = "search title, url, notes"
	input.Prompt = "/"
	input.CharLimit = 120

	app := App{
		links:      params.Links,
		categories: params.Categories,
		keys:       keys,
		styles:     styles,
		input:      input,
		width:      80,
		height:     24,
	}

	app.refresh()
	return app
}

// refresh recomputes the visible list and facets from the full collection.
// Facets always reflect the unfiltered dataset.
func (a *App) refresh() {
	all := a.links.Links()
	a.facets = search.Facets(all)
	a.visible = search.Apply(all, a.query)

	if a.cursor >= len(a.visible) {
		a.cursor = len(a.visible) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}

	// Keep the facet index pointing at the active filter
	a.facetIdx = 0
	for i, f := range a.facets {
		if f == a.query.Filters.Category {
			a.facetIdx = i
		}
	}
}

// Visible returns the currently visible links.
func (a App) Visible() []model.Link {
	return a.visible
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Query returns the active query.
func (a App) Query() search.Query {
	return a.query
}

// WithDimensions returns a copy with fixed dimensions. Used in tests.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeConfirmDelete:
			return a.updateConfirmDelete(msg)
		default:
			return a.updateNormal(msg)
		}
	}

	return a, nil
}

// updateSearch handles keys while the search input is focused.
// The query is applied live on every keystroke.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.input.Blur()
		a.query.Text = ""
		a.input.SetValue("")
		a.refresh()
		return a, nil

	case tea.KeyEnter:
		a.mode = ModeNormal
		a.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.query.Text = a.input.Value()
	a.refresh()
	return a, cmd
}

// updateConfirmDelete handles the delete confirmation prompt.
func (a App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && string(msg.Runes) == "y" {
		if err := a.links.Delete(a.pendingDelete); err != nil {
			a.setError(err.Error())
		} else {
			a.setStatus("Deleted")
		}
		a.refresh()
	}
	a.pendingDelete = ""
	a.mode = ModeNormal
	return a, nil
}

// updateNormal handles normal-mode keys.
func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.hasG {
			a.cursor = 0
			a.hasG = false
			return a, nil
		}
		a.hasG = true
		return a, nil
	}
	a.hasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if len(a.visible) > 0 && a.cursor < len(a.visible)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(a.visible) > 0 {
			a.cursor = len(a.visible) - 1
		}

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.input.Focus()
		a.input.SetValue(a.query.Text)

	case key.Matches(msg, a.keys.CycleFilter):
		if len(a.facets) > 0 {
			a.facetIdx = (a.facetIdx + 1) % len(a.facets)
			a.query.Filters.Category = a.facets[a.facetIdx]
			a.refresh()
		}

	case key.Matches(msg, a.keys.CycleSort):
		a.query.Sort = a.query.Sort.Next()
		a.refresh()

	case key.Matches(msg, a.keys.ToggleNotes):
		a.query.Filters.HasNotes = nextNotesFilter(a.query.Filters.HasNotes)
		a.refresh()

	case key.Matches(msg, a.keys.ClearFilters):
		a.query = search.Query{}
		a.input.SetValue("")
		a.refresh()

	case key.Matches(msg, a.keys.Reload):
		if err := a.links.Load(); err != nil {
			a.setError(err.Error())
		} else {
			a.setStatus("Reloaded")
		}
		a.refresh()

	case key.Matches(msg, a.keys.Open):
		if link := a.selected(); link != nil {
			OpenInBrowser(link.URL)
			a.setStatus("Opened " + link.Title)
		}

	case key.Matches(msg, a.keys.YankURL):
		if link := a.selected(); link != nil {
			if err := clipboard.WriteAll(link.URL); err != nil {
				a.setError("Clipboard unavailable")
			} else {
				a.setStatus("Yanked " + link.URL)
			}
		}

	case key.Matches(msg, a.keys.Delete):
		if link := a.selected(); link != nil {
			a.pendingDelete = link.ID
			a.mode = ModeConfirmDelete
		}
	}

	return a, nil
}

// selected returns the link under the cursor, or nil.
func (a *App) selected() *model.Link {
	if len(a.visible) == 0 || a.cursor >= len(a.visible) {
		return nil
	}
	return &a.visible[a.cursor]
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.failed = false
}

func (a *App) setError(msg string) {
	a.status = msg
	a.failed = true
}

// nextNotesFilter cycles the hasNotes filter: off -> with notes -> without
// notes -> off.
func nextNotesFilter(current *bool) *bool {
	switch {
	case current == nil:
		v := true
		return &v
	case *current:
		v := false
		return &v
	default:
		return nil
	}
}

// OpenInBrowser opens a URL in the default browser.
func OpenInBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
