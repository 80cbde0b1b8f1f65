package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lixenwraith/orbit-sound/audio"
	"github.com/lixenwraith/orbit-sound/jobs"
	"github.com/lixenwraith/orbit-sound/logfile"
	"github.com/lixenwraith/orbit-sound/service"
)

var (
	debugFlag = flag.Bool("debug", false, "Write logs to logs/orbit-sound.log")
	rootFlag  = flag.String("root", "", "Data root (overrides ORBIT_SOUND_DATA_ROOT)")
	muteFlag  = flag.Bool("mute", false, "Start muted")
)

func main() {
	flag.Parse()

	if f := logfile.Setup(*debugFlag); f != nil {
		defer f.Close()
	}

	cfg := audio.LoadAudioConfig()
	if *rootFlag != "" {
		cfg.DataRoot = *rootFlag
	}

	hub := service.NewHub()
	queue := jobs.NewQueue(cfg.LoadWorkers)
	audioSvc := audio.NewService(queue)
	if err := hub.Register(queue); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register jobs: %v\n", err)
		os.Exit(1)
	}
	if err := hub.Register(audioSvc); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register audio: %v\n", err)
		os.Exit(1)
	}

	audioArgs := []any{cfg}
	if *muteFlag {
		audioArgs = append(audioArgs, true)
	}
	if err := hub.InitAll(map[string][]any{"audio": audioArgs}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize services: %v\n", err)
		os.Exit(1)
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start services: %v\n", err)
		os.Exit(1)
	}
	defer hub.StopAll()

	// Nil when the audio service degraded
	ae := audioSvc.Engine()
	if ae == nil {
		fmt.Fprintln(os.Stderr, "Audio unavailable, see logs (-debug)")
		hub.StopAll()
		os.Exit(1)
	}

	// Buffer exhaustion leaves the catalog half built
	if err := ae.WaitLoaded(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load sounds: %v\n", err)
		hub.StopAll()
		os.Exit(1)
	}
	log.Printf("soundctl: ready, root=%s", cfg.DataRoot)

	con := newConsole(ae, os.Stdout)
	st := ae.Stats()
	fmt.Printf("%d effects, %d tracks. Type help for commands.\n", st.Samples-st.Music, st.Music)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sound> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    completer(con),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open console: %v\n", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}
		if err := ae.Update(); err != nil {
			fmt.Fprintf(os.Stderr, "audio: %v\n", err)
		}
		if !con.exec(strings.TrimSpace(line)) {
			return
		}
	}
}

func completer(con *console) *readline.PrefixCompleter {
	effects := readline.PcItemDynamic(con.completions(false))
	tracks := readline.PcItemDynamic(con.completions(true))
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("list"),
		readline.PcItem("music"),
		readline.PcItem("play", effects),
		readline.PcItem("stop"),
		readline.PcItem("fade"),
		readline.PcItem("pan"),
		readline.PcItem("track", tracks),
		readline.PcItem("stopall"),
		readline.PcItem("stopfx"),
		readline.PcItem("pause"),
		readline.PcItem("resume"),
		readline.PcItem("volume", readline.PcItem("master"), readline.PcItem("sfx")),
		readline.PcItem("mute"),
		readline.PcItem("stats"),
		readline.PcItem("slots"),
		readline.PcItem("quit"),
	)
}
