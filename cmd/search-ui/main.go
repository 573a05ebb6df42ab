package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/steeef/search-ui/internal/apperr"
	"github.com/steeef/search-ui/internal/config"
	"github.com/steeef/search-ui/internal/dispatch"
	"github.com/steeef/search-ui/internal/filter"
	"github.com/steeef/search-ui/internal/handoff"
	"github.com/steeef/search-ui/internal/searchidx"
	"github.com/steeef/search-ui/internal/session"
	"github.com/steeef/search-ui/internal/viewmodel"
)

// Version is set at build time via ldflags.
var Version = ""

var (
	versionFlag  = flag.Bool("version", false, "print version and exit")
	versionShort = flag.Bool("V", false, "print version and exit (short)")
	claudeHome   = flag.String("claude-home", "", "override claude home filter")
	codexHome    = flag.String("codex-home", "", "override codex home filter")
	global       = flag.Bool("global", false, "start in global scope")
	globalShort  = flag.Bool("g", false, "start in global scope (short)")
	dirFlag      = flag.String("dir", "", "pin scope to a directory")
	numResults   = flag.Int("num-results", 0, "cap displayed results")
	numResultsN  = flag.Int("n", 0, "cap displayed results (short)")
	original     = flag.Bool("original", false, "include original sessions")
	subAgent     = flag.Bool("sub-agent", false, "include sub-agent sessions")
	trimmed      = flag.Bool("trimmed", false, "include trimmed sessions")
	continuedF   = flag.Bool("continued", false, "include continued sessions")
	minLines     = flag.Int("min-lines", 0, "minimum body length")
	afterFlag    = flag.String("after", "", "date filter lower bound")
	beforeFlag   = flag.String("before", "", "date filter upper bound")
	agentFlag    = flag.String("agent", "", "restrict to one agent (claude|codex)")
	queryFlag    = flag.String("query", "", "preload query")
	jsonFlag     = flag.Bool("json", false, "non-interactive: emit filtered results as JSON-lines")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: search-ui [options] [output-file]\n\n")
		fmt.Fprintf(os.Stderr, "Browse and hand off AI assistant session transcripts.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if *versionFlag || *versionShort {
		fmt.Printf("search-ui version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	outputFile := positionalOutputFile(flag.Args())

	logger, closeLog := newLogger()
	defer closeLog()

	exitCode := run(logger, outputFile)
	os.Exit(exitCode)
}

// run wires every component together and returns the process exit code
// (spec.md §6: 0 success/cancel, 1 fatal, 2 bad usage).
func run(logger *slog.Logger, outputFile string) int {
	indexPath := config.IndexPath()
	reader, err := searchidx.Open(indexPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
		return 1
	}
	defer reader.Close()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
		return 1
	}

	sessions, err := reader.LoadSessions(loadLimit())
	if err != nil {
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
		return 1
	}

	home := searchidx.HomeFilters{
		ClaudeHome: config.ClaudeHome(*claudeHome),
		CodexHome:  config.CodexHome(*codexHome),
	}

	f, err := buildFilters(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
		return 2
	}
	f.ClaudeHome = home.ClaudeHome
	f.CodexHome = home.CodexHome

	vm := viewmodel.New(sessions, cwd, maxResults())
	vm.Filters = f
	vm.Query = *queryFlag
	if strings.TrimSpace(vm.Query) != "" {
		res, err := reader.Search(context.Background(), vm.Query, home)
		if err != nil {
			logger.Warn("initial query failed", "err", err)
		} else {
			vm.RankedIDs = res.RankedIDs
			vm.Snippets = res.Snippets
		}
	}
	vm.Rerun()

	if *jsonFlag {
		return runJSON(vm, outputFile)
	}
	return runInteractive(vm, reader, home, outputFile, logger)
}

func loadLimit() int {
	if n := maxResults(); n > 0 {
		return n * 4
	}
	return 2000
}

func maxResults() int {
	if *numResults > 0 {
		return *numResults
	}
	return *numResultsN
}

func buildFilters(cwd string) (filter.Filters, error) {
	f := filter.Default()

	anyType := *original || *subAgent || *trimmed || *continuedF
	if anyType {
		f.IncludeOriginal = *original
		f.IncludeSub = *subAgent
		f.IncludeTrimmed = *trimmed
		f.IncludeContinued = *continuedF
	}

	if *dirFlag != "" {
		f.DirOverride = config.ResolveDir(*dirFlag, cwd)
	} else if *global || *globalShort {
		f.Global = true
	}

	f.MinLines = *minLines

	if *agentFlag != "" {
		f.Agent = session.NormalizeAgent(*agentFlag)
	}

	now := nowForDates()
	if *afterFlag != "" {
		b, err := filter.ParseBound(*afterFlag, now)
		if err != nil {
			return f, &apperr.UsageError{Msg: fmt.Sprintf("--after: %v", err)}
		}
		f.AfterDate = b
	}
	if *beforeFlag != "" {
		b, err := filter.ParseBound(*beforeFlag, now)
		if err != nil {
			return f, &apperr.UsageError{Msg: fmt.Sprintf("--before: %v", err)}
		}
		f.BeforeDate = b
	}
	return f, nil
}

func runJSON(vm *viewmodel.ViewModel, outputFile string) int {
	w := io.Writer(os.Stdout)
	var f *os.File
	if outputFile != "" {
		var err error
		f, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	records := make([]handoff.Record, 0, len(vm.Filtered))
	for i := range vm.Filtered {
		s, _ := vm.SessionAt(i)
		records = append(records, handoff.FromSession(s, vm.Snippets[s.SessionID]))
	}
	if err := handoff.WriteMany(w, records); err != nil {
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
		return 1
	}
	return 0
}

func runInteractive(vm *viewmodel.ViewModel, reader *searchidx.Reader, home searchidx.HomeFilters, outputFile string, logger *slog.Logger) int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		err := &apperr.TerminalSetupFailure{Err: errors.New("stdout is not a tty")}
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
		return 1
	}

	var handoffErr error
	writer := func(s session.Session, snippet string) error {
		rec := handoff.FromSession(s, snippet)
		w := io.Writer(os.Stdout)
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				handoffErr = err
				return err
			}
			defer f.Close()
			w = f
		}
		if err := handoff.Write(w, rec); err != nil {
			handoffErr = err
			return err
		}
		return nil
	}

	d := dispatch.New(vm, reader, home, writer)
	model := newProgram(d, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", err)
		return 1
	}
	if handoffErr != nil {
		fmt.Fprintf(os.Stderr, "search-ui: %v\n", handoffErr)
		return 1
	}
	return 0
}

// positionalOutputFile applies spec.md §6's heuristic: the last non-flag
// token containing "/" or ending in ".json" wins.
func positionalOutputFile(args []string) string {
	best := ""
	for _, a := range args {
		if strings.Contains(a, "/") || strings.HasSuffix(a, ".json") {
			best = a
		}
	}
	return best
}

func nowForDates() time.Time { return time.Now() }

func newLogger() (*slog.Logger, func()) {
	logPath := filepath.Join(filepath.Dir(config.IndexPath()), "search-ui.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return logger, func() { f.Close() }
}

func effectiveVersion(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}
	return "devel"
}
