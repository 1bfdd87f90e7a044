package popstage

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	outlineWidth = 2
	minDrawSize  = 2
)

var (
	colorOutline = Color{1, 0.6, 0.15, 1}
	colorGlitch  = Color{0.6, 0.9, 1, 1}
)

// RunConfig configures the window opened by Run. Zero fields take the
// stage config's window settings.
type RunConfig struct {
	Title         string
	Width, Height int
	// Script, if set, is stepped once per frame before input polling.
	Script *ScriptRunner
	// ExitOnScriptDone ends the game loop once the script has finished.
	ExitOnScriptDone bool
	// ScreenshotDir is where queued screenshots are written.
	ScreenshotDir string
	// Context bounds analysis requests. Defaults to context.Background.
	Context context.Context
	// UpdateFunc runs at the end of every frame; see Viewer.SetUpdateFunc.
	UpdateFunc func() error
}

// drawItem is one projected drawable, sorted back to front.
type drawItem struct {
	node  *Node
	rect  Rect
	depth float64
}

// Viewer hosts a Stage in an Ebitengine game loop. It polls input,
// forwards it as stage events, runs the frame update, and draws the render
// graph with a flat perspective projection.
type Viewer struct {
	stage         *Stage
	width, height int
	ctx           context.Context

	script           *ScriptRunner
	exitOnScriptDone bool

	// UploadRegion is the screen area acting as the upload drop box.
	UploadRegion Rect

	screenRects map[ScreenID]Rect
	items       []drawItem
	updateFunc  func() error

	ScreenshotDir   string
	screenshotQueue []string
}

// NewViewer creates a viewer for stage rendering at width x height.
func NewViewer(stage *Stage, width, height int) *Viewer {
	w, h := float64(width), float64(height)
	boxW := w*0.23 + h*0.4 - 10
	boxH := w*0.1 + h*0.14 + 60
	return &Viewer{
		stage:         stage,
		width:         width,
		height:        height,
		ctx:           context.Background(),
		UploadRegion:  Rect{X: (w - boxW) / 2, Y: h/2 + 22 - boxH/2, Width: boxW, Height: boxH},
		screenRects:   make(map[ScreenID]Rect),
		ScreenshotDir: "screenshots",
	}
}

// SetScript attaches a script runner stepped once per frame.
func (v *Viewer) SetScript(r *ScriptRunner, exitOnDone bool) {
	v.script = r
	v.exitOnScriptDone = exitOnDone
}

// SetUpdateFunc sets a callback run at the end of every Update. A non-nil
// error stops the game loop.
func (v *Viewer) SetUpdateFunc(fn func() error) {
	v.updateFunc = fn
}

// SetContext sets the context analysis requests are bound to.
func (v *Viewer) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	if v.script != nil {
		v.script.Step(v.stage, v.Screenshot)
		if v.exitOnScriptDone && v.script.Done() {
			return ebiten.Termination
		}
	}
	v.pollInput()
	v.stage.Update()
	if v.updateFunc != nil {
		return v.updateFunc()
	}
	return nil
}

// Layout implements ebiten.Game.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	g := v.stage.Graph()
	light := shade(g.Lights(), v.stage.Config().Lights.Light.Point)
	viewport := Rect{Width: float64(v.width), Height: float64(v.height)}
	now := v.stage.Now()

	v.project(g, viewport)
	for _, it := range v.items {
		c := it.node.Material.Scale(light)
		if id, ok := g.ScreenAt(it.node); ok && v.stage.Channels().Glitching(id, now) {
			c = colorGlitch
		}
		fillRect(screen, it.rect, c)
		if it.node.Highlighted {
			strokeRect(screen, it.rect, colorOutline)
		}
	}

	v.drawOverlay(screen)
	v.flushScreenshots(screen)
}

// project collects every visible drawable's screen rectangle, farthest
// first, and refreshes the screen hover regions.
func (v *Viewer) project(g *Graph, viewport Rect) {
	v.items = v.items[:0]
	clear(v.screenRects)
	g.Root.Walk(func(n *Node) bool {
		if !n.Visible {
			return false
		}
		if !n.IsLeafDrawable() {
			return true
		}
		sx, sy, depth, ok := g.Camera.Project(n.WorldPosition(), viewport)
		if !ok {
			return true
		}
		w := max(g.Camera.ProjectedSize(max(n.Scale.X, n.Scale.Z), depth, viewport), minDrawSize)
		h := max(g.Camera.ProjectedSize(n.Scale.Y, depth, viewport), minDrawSize)
		r := Rect{X: sx - w/2, Y: sy - h/2, Width: w, Height: h}
		v.items = append(v.items, drawItem{node: n, rect: r, depth: depth})
		if id, ok := g.ScreenAt(n); ok {
			v.screenRects[id] = r
		}
		return true
	})
	sort.SliceStable(v.items, func(i, j int) bool { return v.items[i].depth > v.items[j].depth })
}

func (v *Viewer) drawOverlay(screen *ebiten.Image) {
	snap := v.stage.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "route %s  theme %s", snap.Route, snap.Theme)
	if snap.Upload != nil {
		fmt.Fprintf(&b, "\nupload %q  [Enter] analyze", snap.Upload.Title)
	}
	if snap.Submitting {
		b.WriteString("\nanalyzing...")
	}
	if v.stage.Config().Debug {
		fmt.Fprintf(&b, "\nfps %.0f  tps %.0f  v%d", ebiten.ActualFPS(), ebiten.ActualTPS(), snap.Version)
	}
	ebitenutil.DebugPrintAt(screen, b.String(), 8, 8)

	y := v.height - 20
	notices := v.stage.Notices().Visible(v.stage.Now())
	for i := len(notices) - 1; i >= 0; i-- {
		n := notices[i]
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("[%s] %s", n.Kind, n.Message), 8, y)
		y -= 16
	}
}

// Run opens a window and runs stage until the window is closed, the
// update func fails, or the script finishes (with ExitOnScriptDone).
func Run(stage *Stage, cfg RunConfig) error {
	wc := stage.Config().Window
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = wc.Width, wc.Height
	}
	if cfg.Title == "" {
		cfg.Title = wc.Title
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = stage.Config().ScreenshotDir
	}
	v := NewViewer(stage, cfg.Width, cfg.Height)
	if cfg.ScreenshotDir != "" {
		v.ScreenshotDir = cfg.ScreenshotDir
	}
	if cfg.Context != nil {
		v.SetContext(cfg.Context)
	}
	if cfg.Script != nil {
		v.SetScript(cfg.Script, cfg.ExitOnScriptDone)
	}
	v.SetUpdateFunc(cfg.UpdateFunc)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

// fillRect fills r on dst. SubImage clips to dst's bounds.
func fillRect(dst *ebiten.Image, r Rect, c Color) {
	rect := image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
	if rect.Empty() {
		return
	}
	sub, ok := dst.SubImage(rect).(*ebiten.Image)
	if !ok {
		return
	}
	sub.Fill(c.toRGBA())
}

// strokeRect draws the outline of r with outlineWidth pixels.
func strokeRect(dst *ebiten.Image, r Rect, c Color) {
	const w = outlineWidth
	fillRect(dst, Rect{r.X - w, r.Y - w, r.Width + 2*w, w}, c)
	fillRect(dst, Rect{r.X - w, r.Y + r.Height, r.Width + 2*w, w}, c)
	fillRect(dst, Rect{r.X - w, r.Y, w, r.Height}, c)
	fillRect(dst, Rect{r.X + r.Width, r.Y, w, r.Height}, c)
}
