// Package main is the entry point for the go-arp command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-arp/api"
	"go-arp/app"
	"go-arp/clock"
	"go-arp/config"
	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/tui"
)

var (
	configPath string
	debugLog   bool
	palette    string
	withAPI    bool
	listenAddr string
	renderOut  string
	renderLen  int
	renderKeys string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "go-arp",
	Short: "MIDI arpeggiator, euclidean pitch sequencer and Machinedrum randomizer",
	Long: `go-arp arpeggiates held MIDI notes, plays a euclidean pitch sequence
and randomizes Machinedrum track parameters, all locked to one clock.

Examples:
  go-arp run
  go-arp run --api
  go-arp ports
  go-arp render -n 64 -k 60,64,67 -o arp.mid
  go-arp serve --listen :8090`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugLog {
			return debug.Enable("")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play live with the terminal UI",
	RunE:  runLive,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Play live, controlled through the HTTP API only",
	RunE:  runServe,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	RunE:  runPorts,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render held notes offline to a MIDI file",
	RunE:  runRender,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.json, .yaml); default ~/.config/go-arp/config.json")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Write a debug log to ~/.config/go-arp/debug.log")

	runCmd.Flags().StringVar(&palette, "palette", theme.DefaultPalette, "Color palette (builtin name or .gpl path)")
	runCmd.Flags().BoolVar(&withAPI, "api", false, "Also serve the HTTP API")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "API listen address (overrides config)")

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "API listen address (overrides config)")

	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "arp.mid", "Output .mid file path")
	renderCmd.Flags().IntVarP(&renderLen, "ticks", "n", 64, "Length in 16th notes")
	renderCmd.Flags().StringVarP(&renderKeys, "keys", "k", "60,64,67", "Held notes, comma separated")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(renderCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// session is a live engine with its ports and clock running.
type session struct {
	cfg       *config.Config
	eng       *sequencer.Engine
	out       *midi.Output
	deviceMgr *midi.DeviceManager
	tempo     tui.Tempo
}

func startSession(ctx context.Context, cfg *config.Config) (*session, error) {
	out, err := midi.OpenOutput(cfg.Output.PortName, config.MIDIChannel(cfg.Output.ParamChannel))
	if err != nil {
		return nil, err
	}
	eng, err := app.NewEngine(out, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, eng: eng, out: out}
	s.deviceMgr = midi.NewDeviceManager(cfg.Input.Match, cfg.InputChannel())
	go s.deviceMgr.Run(ctx)

	var ticks <-chan clock.Tick
	switch cfg.Clock {
	case config.ClockExternal:
		clockIn := make(chan midi.ClockEvent, 96)
		ext := clock.NewExternal(clockIn)
		go app.Route(ctx, s.deviceMgr.Events(), eng, clockIn)
		go ext.Run(ctx)
		ticks = ext.Ticks()
	default:
		internal := clock.NewInternal(cfg.Tempo)
		go app.Route(ctx, s.deviceMgr.Events(), eng, nil)
		go internal.Run(ctx)
		ticks = internal.Ticks()
		s.tempo = internal
	}

	go eng.Run(ctx, ticks)
	debug.Log("main", "session started: out=%q clock=%s", out.Name(), cfg.Clock)
	return s, nil
}

func (s *session) serveAPI(ctx context.Context, addr string) <-chan error {
	if addr == "" {
		addr = s.cfg.Listen
	}
	errc := make(chan error, 1)
	go func() {
		errc <- api.NewServer(s.eng).Run(ctx, addr)
	}()
	return errc
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	th, err := theme.Load(palette)
	if err != nil {
		return err
	}
	defer midi.CloseDriver()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := startSession(ctx, cfg)
	if err != nil {
		return err
	}
	if withAPI {
		go func() {
			if err := <-s.serveAPI(ctx, listenAddr); err != nil {
				debug.Log("api", "server stopped: %v", err)
			}
		}()
	}

	m := tui.NewModel(s.eng, s.deviceMgr, s.tempo, th)
	m.OutName = s.out.Name()
	m.SetRandomizer(app.Randomizer(cfg))

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	cancel()
	// let the engine release its notes
	time.Sleep(50 * time.Millisecond)
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer midi.CloseDriver()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := startSession(ctx, cfg)
	if err != nil {
		return err
	}
	addr := listenAddr
	if addr == "" {
		addr = cfg.Listen
	}
	fmt.Printf("go-arp serving on http://%s (output %s)\n", addr, s.out.Name())

	err = <-s.serveAPI(ctx, addr)
	time.Sleep(50 * time.Millisecond)
	return err
}

func runPorts(cmd *cobra.Command, args []string) error {
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins, outs []string
	}
	ch := make(chan result, 1)
	go func() {
		ins, outs := midi.ListPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		fmt.Println("=== MIDI Input Ports ===")
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p)
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p)
		}
		midi.CloseDriver()
		return nil
	case <-time.After(3 * time.Second):
		return fmt.Errorf("port enumeration timed out")
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	notes, err := parseNotes(renderKeys)
	if err != nil {
		return err
	}
	if err := app.RenderFile(cfg, renderLen, notes, renderOut); err != nil {
		return err
	}
	fmt.Printf("Rendered %d ticks to %s\n", renderLen, renderOut)
	return nil
}

func parseNotes(s string) ([]uint8, error) {
	var notes []uint8
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid note %q", f)
		}
		notes = append(notes, uint8(n))
	}
	return notes, nil
}
