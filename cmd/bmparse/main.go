package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/nikbrunner/bmparse/internal/logging"
	"github.com/nikbrunner/bmparse/internal/model"
	"github.com/nikbrunner/bmparse/internal/netscape"
	"github.com/nikbrunner/bmparse/internal/picker"
	"github.com/nikbrunner/bmparse/internal/search"
	"github.com/nikbrunner/bmparse/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()
		return
	case "parse":
		args := mustParseArgs(os.Args[2:])
		if len(args.positional) != 1 {
			fmt.Fprintf(os.Stderr, "Usage: bmparse parse <file.html> [--json]\n")
			os.Exit(1)
		}
		runParse(args)
	case "import":
		args := mustParseArgs(os.Args[2:])
		if len(args.positional) != 1 {
			fmt.Fprintf(os.Stderr, "Usage: bmparse import <file.html> [--db path]\n")
			os.Exit(1)
		}
		runImport(args)
	case "search":
		args := mustParseArgs(os.Args[2:])
		if len(args.positional) == 0 {
			fmt.Fprintf(os.Stderr, "Usage: bmparse search <query>\n")
			os.Exit(1)
		}
		runSearch(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	help := `bmparse - read Netscape bookmark files

Usage:
  bmparse parse <file> [--json]      Print the bookmarks of an exported file
  bmparse import <file> [--db path]  Merge an exported file into the catalog
  bmparse search <query>             Fuzzy search the catalog → select → open
  bmparse help                       Show this help

Parse options (parse, import):
  --no-ignore-toolbar   Keep the personal toolbar folder as a folder and tag
  --no-tags             Do not derive tags from folders
  --raw-dates           Keep ADD_DATE / LAST_MODIFIED as raw timestamps

Picker keys:
  j/k         Move down/up
  Enter       Open bookmark in browser
  y           Copy URL to clipboard
  q/Esc       Cancel

Configuration:
  ~/.config/bmparse/config.json
  Environment: BMPARSE_IGNORE_TOOLBAR, BMPARSE_FOLDER_TAGS, BMPARSE_DATE_OBJECTS,
               BMPARSE_LOG_LEVEL, BMPARSE_STORE_PATH

Data Storage:
  ~/.config/bmparse/bookmarks.json (use a .db path for SQLite)
`
	fmt.Print(help)
}

func mustParseArgs(raw []string) cliArgs {
	args, err := parseArgs(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return args
}

// setup loads the config and builds the logger.
func setup() (*storage.Config, *slog.Logger) {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting config path: %v\n", err)
		os.Exit(1)
	}

	config, err := storage.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	noColor := !isatty.IsTerminal(os.Stderr.Fd())
	logger, err := logging.New(os.Stderr, config.LogLevel, noColor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in config: %v\n", err)
		os.Exit(1)
	}

	return config, logger
}

// parseFile reads and parses a bookmark file with config and flag options.
func parseFile(path string, config *storage.Config, logger *slog.Logger, args cliArgs) *netscape.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}

	opts := args.apply(config.ParseOptions(logger.With(slog.String("file", path))))
	result, err := netscape.ParseDocument(string(data), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing bookmarks: %v\n", err)
		os.Exit(1)
	}
	return result
}

// runParse handles the parse subcommand.
func runParse(args cliArgs) {
	config, logger := setup()
	result := parseFile(args.positional[0], config, logger, args)

	if args.json {
		if err := writeJSON(os.Stdout, result.Bookmarks); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(result.Bookmarks) == 0 {
		fmt.Println("No bookmarks found")
		return
	}
	writeOutline(os.Stdout, result.Bookmarks)
}

// writeJSON prints bookmarks as an indented JSON array. No bookmarks prints [].
func writeJSON(w io.Writer, bookmarks []netscape.Bookmark) error {
	if bookmarks == nil {
		bookmarks = []netscape.Bookmark{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bookmarks)
}

// writeOutline prints one block per bookmark: title, URL and tags.
func writeOutline(w io.Writer, bookmarks []netscape.Bookmark) {
	for _, b := range bookmarks {
		fmt.Fprintf(w, "%s\n", b.Title)
		fmt.Fprintf(w, "   %s\n", b.URL())
		if len(b.Tags) > 0 {
			fmt.Fprintf(w, "   tags: %s\n", strings.Join(b.Tags, ", "))
		}
		if added, ok := b.Attributes.Date("add_date"); ok {
			fmt.Fprintf(w, "   added: %s\n", added.Format("2006-01-02"))
		}
	}
	fmt.Fprintf(w, "\n%d bookmarks\n", len(bookmarks))
}

// openStore opens the catalog named by --db, the config, or the default path.
func openStore(args cliArgs, config *storage.Config) storage.Storage {
	path := args.db
	if path == "" {
		path = config.StorePath
	}

	s, err := storage.OpenStorage(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}
	return s
}

// runImport handles the import subcommand.
func runImport(args cliArgs) {
	config, logger := setup()

	s := openStore(args, config)
	defer storage.Close(s)

	store, err := s.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	result := parseFile(args.positional[0], config, logger, args)
	parsed := model.FromResult(result)

	foldersBefore := len(store.Folders)
	added, skipped := store.ImportMerge(parsed.Folders, parsed.Bookmarks)

	if err := s.Save(store); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving bookmarks: %v\n", err)
		os.Exit(1)
	}

	logger.Info("catalog updated",
		slog.Int("bookmarks", len(store.Bookmarks)),
		slog.Int("folders", len(store.Folders)),
	)

	fmt.Printf("Imported %d bookmarks, %d folders", added, len(store.Folders)-foldersBefore)
	if skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", skipped)
	}
	fmt.Println()
}

// runSearch performs a fuzzy search and opens the selected bookmark.
func runSearch(args cliArgs) {
	config, _ := setup()

	s := openStore(args, config)
	defer storage.Close(s)

	store, err := s.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	query := strings.Join(args.positional, " ")
	results := search.FuzzySearchBookmarks(store, query)

	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return
	}

	var selected *model.Bookmark

	if len(results) == 1 {
		selected = results[0].Bookmark
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		p := picker.New(results, query)
		program := tea.NewProgram(p)
		finalModel, err := program.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running picker: %v\n", err)
			os.Exit(1)
		}

		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			return
		}
		selected = finalPicker.SelectedBookmark()
	}

	if selected == nil {
		return
	}

	openURL(selected.URL)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
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
