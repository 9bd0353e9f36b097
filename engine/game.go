package engine

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/procballs/config"
	"github.com/lixenwraith/procballs/constants"
	"github.com/lixenwraith/procballs/core"
	"github.com/lixenwraith/procballs/process"
	"github.com/lixenwraith/procballs/render"
	"github.com/lixenwraith/procballs/status"
)

// Prompt stages of the start sequence
const (
	promptNone = iota
	promptWidth
	promptHeight
)

type sampleResult struct {
	snap process.Snapshot
	err  error
}

// Game drives the terminal: input, the motion/redraw cycle and the sampling cycle
// Screen access and store mutation happen on the loop goroutine only
type Game struct {
	screen  tcell.Screen
	monitor *Monitor
	canvas  *render.PixelCanvas
	bar     *render.StatusBar

	reconcileInterval time.Duration
	motionInterval    time.Duration
	autoStart         bool
	requestW          int
	requestH          int

	// Terminal area available to the canvas, in cells
	cols, rows int

	promptStage int
	promptInput string
	pendingW    int
}

// NewGame creates a game over an initialized screen
func NewGame(screen tcell.Screen, monitor *Monitor, reg *status.Registry, cfg config.Config) *Game {
	g := &Game{
		screen:            screen,
		monitor:           monitor,
		bar:               render.NewStatusBar(reg),
		reconcileInterval: cfg.ReconcileInterval.Duration,
		motionInterval:    cfg.MotionInterval.Duration,
		autoStart:         cfg.AutoStart,
		requestW:          cfg.Width,
		requestH:          cfg.Height,
	}
	g.cols, g.rows = g.area()
	w, h := render.PixelsFor(g.cols, g.rows)
	g.canvas = render.NewPixelCanvas(g.cols, g.rows, w, h)
	return g
}

// Run blocks until the user quits or ctx is cancelled
func (g *Game) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	core.Go(func() {
		g.pumpEvents(events, done)
	})

	if g.autoStart {
		g.start(ctx, g.requestW, g.requestH)
	}
	g.draw()

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	results := make(chan sampleResult, 1)
	grp, gctx := errgroup.WithContext(loopCtx)
	grp.Go(core.Guard(func() error {
		defer stop()
		return g.loop(gctx, events, results)
	}))
	grp.Go(core.Guard(func() error {
		return g.sample(gctx, results)
	}))
	return grp.Wait()
}

// pumpEvents forwards terminal events until the screen is finalized or done is closed
func (g *Game) pumpEvents(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := g.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (g *Game) loop(ctx context.Context, events <-chan tcell.Event, results <-chan sampleResult) error {
	motion := time.NewTicker(g.motionInterval)
	defer motion.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !g.handleEvent(ctx, ev) {
				g.monitor.Stop()
				return nil
			}
			g.draw()

		case res := <-results:
			if res.err != nil {
				g.monitor.RecordError(res.err)
				continue
			}
			g.monitor.Apply(ctx, res.snap)

		case <-motion.C:
			g.monitor.Advance()
			g.draw()
		}
	}
}

// sample lists processes off the loop goroutine
// Only the newest undelivered result is kept
func (g *Game) sample(ctx context.Context, out chan sampleResult) error {
	ticker := time.NewTicker(g.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !g.monitor.Running() {
			continue
		}

		snap, err := g.monitor.Sample(ctx)
		if ctx.Err() != nil {
			return nil
		}

		res := sampleResult{snap: snap, err: err}
		select {
		case out <- res:
		default:
			select {
			case <-out:
			default:
			}
			select {
			case out <- res:
			default:
			}
		}
	}
}

// handleEvent returns false when the user quits
func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.handleResize()
		g.screen.Sync()

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if g.promptStage != promptNone {
			g.handlePromptKey(ctx, ev)
			return true
		}

		if ev.Key() == tcell.KeyEscape {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 'n', 'N':
			g.promptStage = promptWidth
			g.promptInput = ""
		case 's', 'S':
			if err := g.monitor.ToggleUser(ctx); err != nil {
				log.Printf("game: switch: %v", err)
			}
		case 'p', 'P':
			if g.monitor.Running() {
				g.monitor.TogglePause()
			}
		}
	}
	return true
}

func (g *Game) handlePromptKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		g.promptStage = promptNone
		g.promptInput = ""

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(g.promptInput); n > 0 {
			g.promptInput = g.promptInput[:n-1]
		}

	case tcell.KeyEnter:
		value := 0
		if g.promptInput != "" {
			v, err := strconv.Atoi(g.promptInput)
			if err != nil || v <= 0 {
				g.promptInput = ""
				return
			}
			value = v
		}
		g.promptInput = ""

		if g.promptStage == promptWidth {
			g.pendingW = value
			g.promptStage = promptHeight
			return
		}
		g.promptStage = promptNone
		g.start(ctx, g.pendingW, value)

	case tcell.KeyRune:
		if r := ev.Rune(); r >= '0' && r <= '9' && len(g.promptInput) < 6 {
			g.promptInput += string(r)
		}
	}
}

// start applies a requested canvas size (0 = fit) and starts the monitor
func (g *Game) start(ctx context.Context, width, height int) {
	g.requestW, g.requestH = width, height
	w, h := g.canvasSize()
	g.canvas.Resize(g.cols, g.rows, w, h)

	if err := g.monitor.Start(ctx, w, h); err != nil {
		log.Printf("game: start: %v", err)
	}
}

// canvasSize resolves the requested size against the terminal area
// Zero fits an axis; oversized requests are clamped so every ball stays visible
func (g *Game) canvasSize() (int, int) {
	maxW, maxH := render.PixelsFor(g.cols, g.rows)
	w, h := g.requestW, g.requestH
	if w <= 0 || w > maxW {
		w = maxW
	}
	if h <= 0 || h > maxH {
		h = maxH
	}
	return w, h
}

func (g *Game) area() (cols, rows int) {
	cols, rows = g.screen.Size()
	rows -= constants.StatusBarHeight
	return max(cols, 0), max(rows, 0)
}

func (g *Game) handleResize() {
	g.cols, g.rows = g.area()
	w, h := g.canvasSize()
	if !g.monitor.Running() {
		w, h = render.PixelsFor(g.cols, g.rows)
	}
	g.canvas.Resize(g.cols, g.rows, w, h)
	if g.monitor.Running() {
		g.monitor.Resize(w, h)
	}
}

func (g *Game) draw() {
	g.canvas.Clear()

	brightness := 1.0
	if g.monitor.Paused() {
		brightness = constants.PausedDim
	}
	render.DrawBalls(g.canvas, g.monitor.Balls(), brightness)
	g.canvas.Flush(g.screen)

	var prompt *render.Prompt
	switch g.promptStage {
	case promptWidth:
		prompt = &render.Prompt{Label: constants.PromptWidth, Input: g.promptInput}
	case promptHeight:
		prompt = &render.Prompt{Label: constants.PromptHeight, Input: g.promptInput}
	}
	g.bar.Render(g.screen, g.rows, g.cols, prompt)

	g.screen.Show()
}
