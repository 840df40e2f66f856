package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/quirbit/qb/internal/ai"
	"github.com/quirbit/qb/internal/culler"
	"github.com/quirbit/qb/internal/exporter"
	"github.com/quirbit/qb/internal/importer"
	"github.com/quirbit/qb/internal/logger"
	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/picker"
	"github.com/quirbit/qb/internal/search"
	"github.com/quirbit/qb/internal/store"
	"github.com/quirbit/qb/internal/storage"
	"github.com/quirbit/qb/internal/tui"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "login":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: qb login <email>\n")
				os.Exit(1)
			}
			runLogin(os.Args[2])
			return
		case "logout":
			runLogout()
			return
		case "add":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: qb add <url> [title] [category]\n")
				os.Exit(1)
			}
			runAdd(os.Args[2:])
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: qb import <file.html>\n")
				os.Exit(1)
			}
			runImport(os.Args[2])
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		case "cull":
			runCull()
			return
		case "category":
			runCategory(os.Args[2:])
			return
		case "note":
			runNote(os.Args[2:])
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run full TUI
	runTUI()
}

func printHelp() {
	help := `qb - personal link and note manager

Usage:
  qb                          Open interactive TUI
  qb <query>                  Quick search -> select -> open
  qb login <email>            Sign in (creates the profile on first use)
  qb logout                   Sign out
  qb add <url> [title] [cat]  Add a link (title suggested when omitted)
  qb import <file>            Import links from bookmark HTML
  qb export [path]            Export links to bookmark HTML
  qb cull                     Check all links for dead URLs
  qb category <cmd>           Manage categories:
                                list, add <name>, rename <old> <new>,
                                rm <name>, color <name> <color>
  qb note <cmd>               Manage notes: list, add <title> <text>, rm <id>
  qb help                     Show this help

TUI Keybindings:
  j/k         Move down/up
  gg/G        Jump to top/bottom
  /           Search title, url and notes
  f           Cycle category filter
  s           Cycle sort mode
  n           Cycle notes filter
  c           Clear search and filters
  o/Enter     Open link in browser
  Y           Copy URL to clipboard
  d           Delete link
  r           Reload from storage
  q           Quit

Data Storage:
  ~/.config/qb/qb.db
`
	fmt.Print(help)
}

// env bundles everything a subcommand needs.
type env struct {
	configPath string
	config     *storage.Config
	backend    *storage.SQLite
	log        logger.Logger
	categories *store.CategoryStore
	links      *store.LinkStore
	notes      *store.NoteStore
}

// setup opens config, backend and stores, and restores the saved session.
func setup() *env {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatal("Error getting config path: %v", err)
	}
	config, err := storage.LoadConfig(configPath)
	if err != nil {
		fatal("Error loading config: %v", err)
	}

	dbPath, err := storage.DefaultSQLitePath()
	if err != nil {
		fatal("Error getting database path: %v", err)
	}
	backend, err := storage.NewSQLite(dbPath)
	if err != nil {
		fatal("Error opening database: %v", err)
	}

	logPath, err := storage.DefaultLogPath()
	if err != nil {
		fatal("Error getting log path: %v", err)
	}
	log, err := logger.NewFile(logPath)
	if err != nil {
		fatal("Error opening log: %v", err)
	}

	dataDir, err := storage.DefaultDataDir()
	if err != nil {
		fatal("Error getting data dir: %v", err)
	}

	e := &env{
		configPath: configPath,
		config:     config,
		backend:    backend,
		log:        log,
		categories: store.NewCategoryStore(store.CategoryStoreParams{
			Backend:    backend,
			LocalCache: storage.NewLocalColorCache(dataDir),
			Logger:     log,
		}),
		links: store.NewLinkStore(store.LinkStoreParams{Backend: backend, Logger: log}),
		notes: store.NewNoteStore(store.NoteStoreParams{Backend: backend, Logger: log}),
	}

	if config.Session != nil {
		e.restoreSession(*config.Session)
	}

	return e
}

// restoreSession points every store at the session and runs the one-time
// legacy color migration.
func (e *env) restoreSession(session model.Session) {
	if err := e.categories.SetSession(session); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	e.links.SetSession(session)
	e.notes.SetSession(session)

	if err := e.categories.MigrateLegacyColors(); err != nil {
		// Cache stays on disk; retried on next start
		fmt.Fprintf(os.Stderr, "Warning: legacy color migration: %v\n", err)
	}

	if err := e.links.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// requireSession exits when nobody is signed in.
func (e *env) requireSession() {
	if e.config.Session == nil {
		fatal("Not signed in. Run: qb login <email>")
	}
}

func (e *env) close() {
	_ = e.log.Sync()
	_ = e.backend.Close()
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// runTUI runs the full interactive TUI.
func runTUI() {
	e := setup()
	defer e.close()
	e.requireSession()

	app := tui.NewApp(tui.AppParams{Links: e.links, Categories: e.categories})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatal("Error running app: %v", err)
	}
}

// runQuickSearch performs a fuzzy search and opens the selected link.
func runQuickSearch(query string) {
	e := setup()
	defer e.close()
	e.requireSession()

	results := search.FuzzyLinks(e.links.Links(), query)

	if len(results) == 0 {
		fmt.Printf("No links found for '%s'\n", query)
		os.Exit(0)
	}

	var selected *model.Link

	if len(results) == 1 {
		// Single result - select it directly
		selected = results[0].Link
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		// Multiple results - show picker
		p := picker.New(results, query)
		program := tea.NewProgram(p)
		finalModel, err := program.Run()
		if err != nil {
			fatal("Error running picker: %v", err)
		}

		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			os.Exit(0)
		}
		selected = finalPicker.SelectedLink()
	}

	if selected == nil {
		os.Exit(0)
	}

	tui.OpenInBrowser(selected.URL)
}

// runLogin signs in and persists the session.
func runLogin(email string) {
	e := setup()
	defer e.close()

	session, err := e.backend.SignIn(email)
	if err != nil {
		fatal("Error signing in: %v", err)
	}

	e.config.Session = &session
	if err := storage.SaveConfig(e.configPath, e.config); err != nil {
		fatal("Error saving config: %v", err)
	}

	fmt.Printf("Signed in as %s\n", session.Email)
}

// runLogout clears the persisted session.
func runLogout() {
	e := setup()
	defer e.close()

	e.config.Session = nil
	if err := storage.SaveConfig(e.configPath, e.config); err != nil {
		fatal("Error saving config: %v", err)
	}
	fmt.Println("Signed out")
}

// runAdd adds a single link. When the title is omitted, AI suggestion is
// attempted; without an API key the URL doubles as the title.
func runAdd(args []string) {
	e := setup()
	defer e.close()
	e.requireSession()

	url := args[0]
	var title, category string
	if len(args) >= 2 {
		title = args[1]
	}
	if len(args) >= 3 {
		category = args[2]
	}

	if title == "" {
		title, category = suggestMetadata(e, url, category)
	}
	if category == "" {
		category = e.config.QuickAddCategory
	}

	// Auto-create unknown categories, mirroring the edit flow
	if err := e.categories.Create(category); err != nil &&
		!errors.Is(err, store.ErrDuplicateCategory) {
		fatal("Error creating category: %v", err)
	}

	link, err := e.links.Add(title, url, category, nil)
	if err != nil {
		if errors.Is(err, storage.ErrRateLimited) {
			fatal("Slow down: %v", storage.ErrRateLimited)
		}
		fatal("Error adding link: %v", err)
	}

	fmt.Printf("Added %q [%s]\n", link.Title, link.Category)
}

// suggestMetadata asks the AI for a title and category. Falls back to the
// URL itself when no API key is configured.
func suggestMetadata(e *env, url, category string) (string, string) {
	client, err := ai.NewClient()
	if err != nil {
		return url, category
	}

	context := ai.BuildContext(e.categories.List(), e.links.Links())
	resp, err := client.SuggestLink(url, context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: suggestion failed: %v\n", err)
		return url, category
	}

	if category == "" {
		category = resp.Category
	}
	return resp.Title, category
}

// runImport handles the import subcommand.
func runImport(filePath string) {
	e := setup()
	defer e.close()
	e.requireSession()

	file, err := os.Open(filePath)
	if err != nil {
		fatal("Error opening file: %v", err)
	}
	defer file.Close()

	links, err := importer.ParseHTMLLinks(file, e.config.Session.UserID)
	if err != nil {
		fatal("Error parsing HTML: %v", err)
	}

	// Create missing categories first so imported links reference known names
	for _, name := range importer.Categories(links) {
		if err := e.categories.Create(name); err != nil &&
			!errors.Is(err, store.ErrDuplicateCategory) {
			fmt.Fprintf(os.Stderr, "Warning: category %q: %v\n", name, err)
		}
	}

	// Existing URLs are skipped
	existing := map[string]bool{}
	for _, l := range e.links.Links() {
		existing[l.URL] = true
	}

	added, skipped := 0, 0
	for _, l := range links {
		if existing[l.URL] {
			skipped++
			continue
		}
		if _, err := e.links.Add(l.Title, l.URL, l.Category, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %q: %v\n", l.Title, err)
			continue
		}
		added++
	}

	fmt.Printf("Imported %d links", added)
	if skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", skipped)
	}
	fmt.Println()
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	e := setup()
	defer e.close()
	e.requireSession()

	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fatal("Error getting default export path: %v", err)
		}
	}

	links := e.links.Links()
	html := exporter.ExportHTML(links)

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fatal("Error writing file: %v", err)
	}

	fmt.Printf("Exported %d links to %s\n", len(links), outputPath)
}

// runCull checks every link URL and reports dead ones.
func runCull() {
	e := setup()
	defer e.close()
	e.requireSession()

	links := e.links.Links()
	if len(links) == 0 {
		fmt.Println("No links to check")
		return
	}

	fmt.Printf("Checking %d links...\n", len(links))
	results := culler.CheckURLs(links, 8, 10*time.Second, e.config.CullExcludeDomains,
		func(completed, total int) {
			fmt.Printf("\r%d/%d", completed, total)
		})
	fmt.Println()

	dead, unreachable := 0, 0
	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			dead++
			fmt.Printf("DEAD        %-40s %s\n", r.Link.Title, r.Link.URL)
		case culler.Unreachable:
			unreachable++
			fmt.Printf("UNREACHABLE %-40s %s (%s)\n", r.Link.Title, r.Link.URL, r.Error)
		}
	}
	fmt.Printf("%d healthy, %d dead, %d unreachable\n",
		len(results)-dead-unreachable, dead, unreachable)
}

// runCategory handles the category subcommands.
func runCategory(args []string) {
	if len(args) == 0 {
		fatal("Usage: qb category <list|add|rename|rm|color>")
	}

	e := setup()
	defer e.close()

	switch args[0] {
	case "list":
		colors := e.categories.Colors()
		for _, name := range e.categories.List() {
			marker := " "
			if model.IsDefaultCategory(name) {
				marker = "*"
			}
			if color, ok := colors[name]; ok {
				fmt.Printf("%s %s  %s\n", marker, name, color)
			} else {
				fmt.Printf("%s %s\n", marker, name)
			}
		}

	case "add":
		if len(args) < 2 {
			fatal("Usage: qb category add <name>")
		}
		e.requireSession()
		if err := e.categories.Create(args[1]); err != nil {
			fatal("Error: %v", err)
		}
		fmt.Printf("Created %q\n", args[1])

	case "rename":
		if len(args) < 3 {
			fatal("Usage: qb category rename <old> <new>")
		}
		e.requireSession()
		if err := e.categories.Rename(args[1], args[2]); err != nil {
			fatal("Error: %v", err)
		}
		fmt.Printf("Renamed %q to %q\n", args[1], args[2])

	case "rm":
		if len(args) < 2 {
			fatal("Usage: qb category rm <name>")
		}
		e.requireSession()
		if err := e.categories.Delete(args[1]); err != nil {
			fatal("Error: %v", err)
		}
		fmt.Printf("Deleted %q\n", args[1])

	case "color":
		if len(args) < 3 {
			fatal("Usage: qb category color <name> <color>")
		}
		e.requireSession()
		if err := e.categories.SetColor(args[1], args[2]); err != nil {
			fatal("Error: %v", err)
		}
		fmt.Printf("Set %q to %s\n", args[1], args[2])

	default:
		fatal("Unknown category command %q", args[0])
	}
}

// runNote handles the note subcommands.
func runNote(args []string) {
	if len(args) == 0 {
		fatal("Usage: qb note <list|add|rm>")
	}

	e := setup()
	defer e.close()
	e.requireSession()

	switch args[0] {
	case "list":
		if err := e.notes.Load(); err != nil {
			fatal("Error: %v", err)
		}
		for _, n := range e.notes.Notes() {
			fmt.Printf("%s  %s\n", n.ID, n.Title)
		}

	case "add":
		if len(args) < 3 {
			fatal("Usage: qb note add <title> <text>")
		}
		note, err := e.notes.Add(args[1], strings.Join(args[2:], " "))
		if err != nil {
			fatal("Error: %v", err)
		}
		fmt.Printf("Added note %q\n", note.Title)

	case "rm":
		if len(args) < 2 {
			fatal("Usage: qb note rm <id>")
		}
		if err := e.notes.Load(); err != nil {
			fatal("Error: %v", err)
		}
		if err := e.notes.Delete(args[1]); err != nil {
			fatal("Error: %v", err)
		}
		fmt.Println("Deleted")

	default:
		fatal("Unknown note command %q", args[0])
	}
}
