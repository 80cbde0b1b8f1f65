package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/orbit-sound/audio"
	"github.com/lixenwraith/orbit-sound/logfile"
)

var rootFlag = flag.String("root", "", "Data root (overrides ORBIT_SOUND_DATA_ROOT)")

func main() {
	flag.Parse()

	// The screen owns the terminal, so logs always go to a file
	if f := logfile.Setup(true); f != nil {
		defer f.Close()
	}

	cfg := audio.LoadAudioConfig()
	if *rootFlag != "" {
		cfg.DataRoot = *rootFlag
	}

	ae, err := audio.NewAudioEngine(cfg, audio.EngineDeps{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid audio config: %v\n", err)
		os.Exit(1)
	}
	if err := ae.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start audio: %v\n", err)
		os.Exit(1)
	}
	defer ae.Stop()
	if err := ae.WaitLoaded(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load sounds: %v\n", err)
		ae.Stop()
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	// Restore the terminal before reporting a crash
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			log.Printf("soundboard: panic: %v\n%s", r, debug.Stack())
			fmt.Fprintf(os.Stderr, "\nSOUNDBOARD CRASHED: %v\n", r)
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	st := ae.Stats()
	log.Printf("soundboard: %d samples, %d music", st.Samples, st.Music)
	NewBoard(screen, ae).Run()
}
