package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mixdesk/mixdesk"
	"github.com/mixdesk/mixdesk/internal/config"
	"github.com/mixdesk/mixdesk/internal/media"
	"github.com/mixdesk/mixdesk/internal/ui"
	"github.com/mixdesk/mixdesk/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sessionName := flag.String("session", "", "restore a saved session by name")
	saveAs := flag.String("save", "", "save the console as a session on exit")
	flag.Parse()

	configPath := config.GetConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mixer, err := mixdesk.New()
	if err != nil {
		return fmt.Errorf("create mixer: %w", err)
	}
	defer mixer.Close()
	mixer.SetVolume(cfg.MasterVolume)

	store := session.NewStore(cfg.SessionDir)
	if err := store.LoadAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: load sessions: %v\n", err)
	}

	if *sessionName != "" {
		snap, err := store.Get(*sessionName)
		if err != nil {
			return fmt.Errorf("session %q: %w", *sessionName, err)
		}
		session.Apply(mixer, snap)
	}

	// Remaining args are stem files or directories; each stem becomes a
	// channel named after the file.
	paths := flag.Args()
	if len(paths) == 0 {
		paths = cfg.StemDirectories
	}
	for _, path := range paths {
		if err := loadStems(mixer, path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if err := ui.Run(mixer, cfg); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}

	if *saveAs != "" {
		if err := store.Save(session.Capture(mixer, *saveAs)); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	return nil
}

// loadStems adds one channel per supported audio file at path (a file or a
// directory scanned one level deep).
func loadStems(mixer *mixdesk.Mixer, path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	files := []string{path}
	if stat.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = files[:0]
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}

	for _, file := range files {
		if !media.IsSupported(file) {
			continue
		}
		name := filepath.Base(file)
		ch := mixer.AddChannel(name)
		track := ch.Input(file)
		track.SetLoop(true)
		track.Play()
		slog.Debug("stem loaded", "channel", name, "file", file)
	}
	return nil
}
