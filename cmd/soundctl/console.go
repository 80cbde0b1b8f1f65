package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/lixenwraith/orbit-sound/audio"
)

// console dispatches REPL lines against one engine
// Holds one effect handle and one music handle so stop/fade/pan have a target
type console struct {
	ae  *audio.AudioEngine
	out io.Writer

	effect *audio.Event
	music  *audio.Event
}

func newConsole(ae *audio.AudioEngine, out io.Writer) *console {
	return &console{
		ae:     ae,
		out:    out,
		effect: ae.NewEvent(),
		music:  ae.NewEvent(),
	}
}

const helpText = `commands:
  list [filter]                 effects and tracks with storage, size, length
  music                         music track names
  play <name> [l r] [loop]      play an effect (gains 0-1)
  stop                          stop the last effect
  fade <dvdt>                   fade the last effect at dvdt volume/s
  pan <l> <r> [dvdt]            set or ramp the last effect's gains
  track <name> [vol] [fade] [loop]  cross-fade to a music track
  stopall | stopfx              stop everything | everything but music
  pause | resume                suspend output
  volume [master|sfx] <0-100>   set a volume
  mute                          toggle mute
  stats | slots                 diagnostics
  quit`

// exec runs one command line; returns false when the console should exit
func (c *console) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
	case "list", "ls":
		c.list(args)
	case "music":
		for _, name := range c.ae.MusicFiles() {
			fmt.Fprintln(c.out, name)
		}
	case "play":
		c.play(args)
	case "stop":
		c.report(c.effect.Stop(), "stopped")
	case "fade":
		rate, err := floatArg(args, 0, 1)
		if err != nil {
			c.fail(err)
			return true
		}
		c.report(c.effect.FadeOut(rate, 0), "fading")
	case "pan":
		c.pan(args)
	case "track":
		c.track(args)
	case "stopall":
		c.ae.StopAll()
	case "stopfx":
		c.ae.StopAllExceptMusic()
	case "pause":
		c.ae.Pause(true)
	case "resume":
		c.ae.Pause(false)
	case "volume", "vol":
		c.volume(args)
	case "mute":
		if c.ae.ToggleMute() {
			fmt.Fprintln(c.out, "sound on")
		} else {
			fmt.Fprintln(c.out, "muted")
		}
	case "stats":
		c.stats()
	case "slots":
		c.slots()
	case "quit", "exit", "q":
		return false
	default:
		fmt.Fprintf(c.out, "unknown command %q, try help\n", cmd)
	}
	return true
}

func (c *console) report(ok bool, what string) {
	if ok {
		fmt.Fprintln(c.out, what)
	} else {
		fmt.Fprintln(c.out, "nothing playing")
	}
}

func (c *console) fail(err error) {
	fmt.Fprintf(c.out, "error: %v\n", err)
}

func (c *console) list(args []string) {
	filter := ""
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSTORAGE\tSIZE\tLENGTH")
	for _, s := range c.ae.Catalog().Samples() {
		if filter != "" && !strings.Contains(strings.ToLower(s.Name), filter) {
			continue
		}
		kind := "effect"
		if s.IsMusic {
			kind = "music"
		}
		size := "?"
		if s.Size >= 0 {
			size = humanize.Bytes(uint64(s.Size))
		}
		length := "-"
		if s.Duration > 0 {
			length = durafmt.Parse(s.Duration).LimitFirstN(2).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Name, kind, s.Mode, size, length)
	}
	tw.Flush()
}

func (c *console) play(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "usage: play <name> [l r] [loop]")
		return
	}
	name := args[0]
	rest := args[1:]

	var op audio.Op
	if n := len(rest); n > 0 && rest[n-1] == "loop" {
		op |= audio.OpRepeat
		rest = rest[:n-1]
	}
	left, err := floatArg(rest, 0, 1)
	if err != nil {
		c.fail(err)
		return
	}
	right, err := floatArg(rest, 1, left)
	if err != nil {
		c.fail(err)
		return
	}

	c.effect.Play(name, left, right, op)
	if c.effect.ID().IsZero() {
		fmt.Fprintf(c.out, "could not play %q\n", name)
		return
	}
	fmt.Fprintf(c.out, "playing %s on %s\n", name, c.effect.ID())
}

func (c *console) pan(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "usage: pan <l> <r> [dvdt]")
		return
	}
	left, err := floatArg(args, 0, 0)
	if err != nil {
		c.fail(err)
		return
	}
	right, err := floatArg(args, 1, 0)
	if err != nil {
		c.fail(err)
		return
	}
	rate, err := floatArg(args, 2, 0)
	if err != nil {
		c.fail(err)
		return
	}

	if rate > 0 {
		c.report(c.effect.VolumeAnimate(left, right, rate, rate), "ramping")
	} else {
		c.report(c.effect.SetVolume(left, right), "panned")
	}
}

func (c *console) track(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "usage: track <name> [vol] [fade] [loop]")
		return
	}
	name := args[0]
	rest := args[1:]

	repeat := false
	if n := len(rest); n > 0 && rest[n-1] == "loop" {
		repeat = true
		rest = rest[:n-1]
	}
	vol, err := floatArg(rest, 0, 1)
	if err != nil {
		c.fail(err)
		return
	}
	fade, err := floatArg(rest, 1, 0.5)
	if err != nil {
		c.fail(err)
		return
	}

	next := c.ae.NewEvent()
	next.PlayMusic(name, vol, fade, repeat, c.music)
	if next.ID().IsZero() {
		fmt.Fprintf(c.out, "could not play track %q\n", name)
		return
	}
	c.music = next
	fmt.Fprintf(c.out, "track %s on %s\n", name, next.ID())
}

func (c *console) volume(args []string) {
	target := "master"
	if len(args) > 1 {
		target = strings.ToLower(args[0])
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintf(c.out, "master %d sfx %d\n",
			int(c.ae.MasterVolume()*100+0.5), int(c.ae.SfxVolume()*100+0.5))
		return
	}
	pct, err := strconv.Atoi(args[0])
	if err != nil || pct < 0 || pct > 100 {
		fmt.Fprintln(c.out, "volume must be 0-100")
		return
	}

	switch target {
	case "master":
		c.ae.SetMasterVolume(float64(pct) / 100)
	case "sfx":
		c.ae.SetSfxVolume(float64(pct) / 100)
	default:
		fmt.Fprintf(c.out, "unknown volume %q\n", target)
	}
}

func (c *console) stats() {
	st := c.ae.Stats()
	fmt.Fprintf(c.out, "samples %s (%d buffered, %d streamed, %d music)\n",
		humanize.Comma(int64(st.Samples)), st.Buffered, st.Streamed, st.Music)
	fmt.Fprintf(c.out, "buffers used %d\n", st.BuffersUsed)
	fmt.Fprintf(c.out, "plays %s ok, %s failed\n",
		humanize.Comma(int64(st.Played)), humanize.Comma(int64(st.Failed)))
	if st.Active >= 0 {
		fmt.Fprintf(c.out, "active voices %d\n", st.Active)
	}
	if st.Pending > 0 {
		fmt.Fprintf(c.out, "pending loads %d\n", st.Pending)
	}
}

func (c *console) slots() {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tKIND\tID\tSAMPLE")
	for _, s := range c.ae.Slots() {
		kind := "fx"
		if s.Music {
			kind = "music"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Slot, kind, s.ID, s.Sample)
	}
	tw.Flush()
}

// completions returns effect and track names for tab completion
func (c *console) completions(music bool) func(string) []string {
	return func(string) []string {
		var names []string
		for _, s := range c.ae.Catalog().Samples() {
			if s.IsMusic == music {
				names = append(names, s.Name)
			}
		}
		sort.Strings(names)
		return names
	}
}

// floatArg parses args[i] or returns def when absent
func floatArg(args []string, i int, def float64) (float64, error) {
	if i >= len(args) {
		return def, nil
	}
	v, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", args[i])
	}
	return v, nil
}
