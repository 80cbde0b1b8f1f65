package main

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/orbit-sound/audio"
	"github.com/lixenwraith/orbit-sound/vmath"
)

const (
	cellUnits    = 100.0 // World units per screen cell
	turnStep     = math.Pi / 12
	volumeStep   = 0.05
	musicFade    = 0.5 // Volume per second
	statusRows   = 3
	flashMs      = 300
	frameMs      = 16
	emitterGlyph = '◆'
)

// body is a point in the board's world, X right and Z down the screen
type body struct {
	pos vmath.Vec3F
	yaw float64
}

func (b *body) Position() vmath.Vec3F { return b.pos }
func (b *body) Orient() vmath.Mat3F   { return vmath.RotateY3F(b.yaw) }

// Board is an interactive spatial soundboard over one engine
type Board struct {
	screen        tcell.Screen
	width, height int

	ae       *audio.AudioEngine
	listener *body
	emitter  *body

	effects  []string
	selected int
	loop     *audio.Event // Looping effect that tracks the emitter

	tracks []string
	track  int
	music  *audio.Event

	status    string
	flash     bool
	flashTime time.Time
}

// NewBoard wraps an initialized screen; the engine must be loaded
func NewBoard(screen tcell.Screen, ae *audio.AudioEngine) *Board {
	b := &Board{
		screen:   screen,
		ae:       ae,
		listener: &body{},
		emitter:  &body{},
		loop:     ae.NewEvent(),
		music:    ae.NewEvent(),
		track:    -1,
	}
	for _, s := range ae.Catalog().Samples() {
		if s.IsMusic {
			b.tracks = append(b.tracks, s.Name)
		} else {
			b.effects = append(b.effects, s.Name)
		}
	}
	b.width, b.height = screen.Size()
	b.emitter.pos = vmath.Vec3F{X: 4 * cellUnits}
	return b
}

// center returns the listener's screen cell
func (b *Board) center() (int, int) {
	return b.width / 2, (b.height - statusRows) / 2
}

// cellOf maps a world position to a screen cell
func (b *Board) cellOf(p vmath.Vec3F) (int, int) {
	cx, cy := b.center()
	return cx + int(math.Round(p.X/cellUnits)), cy + int(math.Round(p.Z/cellUnits))
}

func (b *Board) selectedEffect() string {
	if len(b.effects) == 0 {
		return ""
	}
	return b.effects[b.selected]
}

func (b *Board) setStatus(format string, args ...any) {
	b.status = fmt.Sprintf(format, args...)
}

func (b *Board) fail(format string, args ...any) {
	b.setStatus(format, args...)
	b.flash = true
	b.flashTime = time.Now()
}

// moveEmitter shifts the emitter by whole cells
func (b *Board) moveEmitter(dx, dz int) {
	b.emitter.pos = vmath.V3FAdd(b.emitter.pos, vmath.Vec3F{X: float64(dx) * cellUnits, Z: float64(dz) * cellUnits})
	b.trackLoop()
}

// turn rotates the listener about Y
func (b *Board) turn(dir float64) {
	b.listener.yaw = math.Mod(b.listener.yaw+dir*turnStep, 2*math.Pi)
	b.trackLoop()
}

// trackLoop repans the looping effect to the emitter's current position
func (b *Board) trackLoop() {
	if !b.loop.IsPlaying() {
		return
	}
	left, right := audio.ComputeStereoGains(b.listener, b.emitter, b.ae.SfxVolume())
	b.loop.VolumeAnimate(left, right, 4, 4)
}

// fire plays the selected effect once at the emitter
func (b *Board) fire() {
	name := b.selectedEffect()
	if name == "" {
		b.fail("no effects loaded")
		return
	}
	id := b.ae.BodyMakeNoise(b.listener, b.emitter, name, 1)
	if id.IsZero() {
		b.fail("%s did not play", name)
		return
	}
	left, right := audio.ComputeStereoGains(b.listener, b.emitter, 1)
	b.setStatus("%s on %s  L %.2f R %.2f", name, id, left, right)
}

// toggleLoop starts or stops the looping effect
func (b *Board) toggleLoop() {
	if b.loop.Stop() {
		b.setStatus("loop stopped")
		return
	}
	name := b.selectedEffect()
	if name == "" {
		b.fail("no effects loaded")
		return
	}
	left, right := audio.ComputeStereoGains(b.listener, b.emitter, b.ae.SfxVolume())
	b.loop.Play(name, left, right, audio.OpRepeat)
	if b.loop.ID().IsZero() {
		b.fail("%s did not loop", name)
		return
	}
	b.setStatus("looping %s", name)
}

// nextTrack cross-fades to the following music track
func (b *Board) nextTrack() {
	if len(b.tracks) == 0 {
		b.fail("no music loaded")
		return
	}
	b.track = (b.track + 1) % len(b.tracks)
	next := b.ae.NewEvent()
	next.PlayMusic(b.tracks[b.track], 1, musicFade, true, b.music)
	if next.ID().IsZero() {
		b.fail("%s did not play", b.tracks[b.track])
		return
	}
	b.music = next
	b.setStatus("music %s", b.tracks[b.track])
}

func (b *Board) nudgeVolume(d float64) {
	b.ae.SetMasterVolume(b.ae.MasterVolume() + d)
	b.setStatus("master %d%%", int(b.ae.MasterVolume()*100+0.5))
}

func (b *Board) handleResize() {
	b.width, b.height = b.screen.Size()
	b.screen.Sync()
}

// handleInput applies one event; returns false to quit
func (b *Board) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			b.moveEmitter(-1, 0)
		case tcell.KeyRight:
			b.moveEmitter(1, 0)
		case tcell.KeyUp:
			b.moveEmitter(0, -1)
		case tcell.KeyDown:
			b.moveEmitter(0, 1)
		case tcell.KeyTab:
			if len(b.effects) > 0 {
				b.selected = (b.selected + 1) % len(b.effects)
			}
		case tcell.KeyBacktab:
			if len(b.effects) > 0 {
				b.selected = (b.selected + len(b.effects) - 1) % len(b.effects)
			}
		case tcell.KeyEnter:
			b.fire()
		case tcell.KeyRune:
			return b.handleRune(ev.Rune())
		}

	case *tcell.EventResize:
		b.handleResize()
	}
	return true
}

func (b *Board) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		b.fire()
	case 'l':
		b.toggleLoop()
	case ',':
		b.turn(-1)
	case '.':
		b.turn(1)
	case 'm':
		b.nextTrack()
	case 's':
		b.ae.StopAllExceptMusic()
		b.setStatus("effects stopped")
	case 'S':
		b.ae.StopAll()
		b.setStatus("all stopped")
	case 'p':
		b.ae.Pause(true)
		b.setStatus("paused")
	case 'r':
		b.ae.Pause(false)
		b.setStatus("resumed")
	case 'M':
		if b.ae.ToggleMute() {
			b.setStatus("sound on")
		} else {
			b.setStatus("muted")
		}
	case '+', '=':
		b.nudgeVolume(volumeStep)
	case '-':
		b.nudgeVolume(-volumeStep)
	}
	return true
}

func (b *Board) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= b.width {
			return
		}
		b.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (b *Board) draw() {
	b.screen.Clear()
	field := b.height - statusRows

	// Listener with a heading tick
	cx, cy := b.center()
	b.screen.SetContent(cx, cy, '@', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	fwd := b.listener.Orient().MulVec(vmath.Vec3F{Z: -1})
	hx, hy := cx+int(math.Round(fwd.X)), cy+int(math.Round(fwd.Z))
	if hx >= 0 && hx < b.width && hy >= 0 && hy < field {
		b.screen.SetContent(hx, hy, '·', nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}

	// Emitter shaded by the louder channel
	ex, ey := b.cellOf(b.emitter.pos)
	if ex >= 0 && ex < b.width && ey >= 0 && ey < field {
		left, right := audio.ComputeStereoGains(b.listener, b.emitter, 1)
		level := int32(80 + 175*max(left, right))
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(level, level/2, 0))
		b.screen.SetContent(ex, ey, emitterGlyph, nil, style)
	}

	// Status
	base := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	if b.flash && time.Since(b.flashTime).Milliseconds() > flashMs {
		b.flash = false
	}
	msgStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	if b.flash {
		msgStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
	}

	st := b.ae.Stats()
	b.drawText(0, field, base, fmt.Sprintf("effect [%d/%d] %s   track %s   master %d%%%s",
		b.selected+1, len(b.effects), b.selectedEffect(), b.trackName(),
		int(b.ae.MasterVolume()*100+0.5), b.muteTag()))
	b.drawText(0, field+1, msgStyle, b.status)
	b.drawText(0, field+2, base, fmt.Sprintf("voices %d  plays %d/%d  arrows move  ,. turn  tab select  space fire  l loop  m music  s/S stop  p/r pause  q quit",
		st.Active, st.Played, st.Played+st.Failed))

	b.screen.Show()
}

func (b *Board) trackName() string {
	if b.track < 0 || !b.music.IsPlaying() {
		return "-"
	}
	return b.tracks[b.track]
}

func (b *Board) muteTag() string {
	if b.ae.IsMuted() {
		return " (muted)"
	}
	return ""
}

// Run drives input and redraw until quit
func (b *Board) Run() {
	ticker := time.NewTicker(frameMs * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go b.screen.ChannelEvents(events, quit)
	defer close(quit)

	for {
		select {
		case ev, ok := <-events:
			if !ok || !b.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if err := b.ae.Update(); err != nil {
				b.fail("audio: %v", err)
			}
			b.draw()
		}
	}
}
