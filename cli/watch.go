package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDelay absorbs the several events editors emit for one save.
const debounceDelay = 100 * time.Millisecond

type WatchCmd struct {
	File    string `help:"Moneybook document." arg:"" type:"existingfile"`
	Account string `help:"Account name or number." arg:""`
	Period  string `help:"Period shown: week, month, year or running." default:"month" enum:"week,month,year,running"`
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "watch "+filepath.Base(cmd.File))
	if err != nil {
		return err
	}
	defer s.close()

	path, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	doc, err := s.open(path)
	if err != nil {
		return s.fail(err)
	}
	a, err := findAccount(doc, cmd.Account)
	if err != nil {
		return s.fail(err)
	}
	rng, err := s.cfg.Period(cmd.Period, doc.Today())
	if err != nil {
		return s.fail(err)
	}
	doc.SetRange(s.ctx, rng)

	show := func() {
		if isTerminal() {
			s.styles.Output().ClearScreen()
			s.styles.Output().MoveCursor(1, 1)
		}
		printLedger(s.stdout, s.styles, doc, a.ID)
		printInfof(s.stdout, "Watching %s", pathStyle.Render(path))
	}
	show()

	runCtx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	return watchFile(runCtx, path, s.logger, func() {
		if err := doc.LoadFromXML(s.ctx, path); err != nil {
			_, _ = fmt.Fprintln(s.stderr, NewErrorRenderer(s.cfg.DateFormat).Render(err))
			return
		}
		if doc.Account(a.ID) == nil {
			printError(s.stderr, fmt.Sprintf("account %s was removed", a.DisplayName()))
			return
		}
		show()
	})
}

// watchFile calls onChange after path was written, until ctx is done. The
// parent directory is watched so atomic saves through a rename are seen.
func watchFile(ctx context.Context, path string, logger *zap.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	changed := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
