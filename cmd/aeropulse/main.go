package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/aeropulse/aeropulse/internal/audio"
	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/cli"
	"github.com/aeropulse/aeropulse/internal/live"
	"github.com/aeropulse/aeropulse/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version  bool   `short:"v" help:"Show version information"`
	Config   string `short:"c" type:"path" help:"Path to YAML config file (optional)"`
	Logs     bool   `help:"Save a text session log next to each report"`
	Source   string `help:"Audio input: mic, file or synth"`
	File     string `type:"existingfile" help:"WAV file to replay as the input"`
	Device   string `help:"Input device index or name prefix (see devices)"`
	Output   string `short:"o" type:"path" help:"Directory for reports and CSV exports"`
	Patients string `type:"existingfile" help:"YAML patient fixture file"`
	Patient  int    `help:"Patient id within the fixture file"`

	Monitor MonitorCmd `cmd:"" default:"1" help:"Run the live monitoring dashboard"`
	Record  RecordCmd  `cmd:"" help:"Record for a fixed duration, then export the report"`
	Devices DevicesCmd `cmd:"" help:"List audio input devices"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("aeropulse"),
		kong.Description("Live respiratory wheeze monitor"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if err := ctx.Run(cliArgs); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// MonitorCmd runs the interactive dashboard
type MonitorCmd struct{}

// Run implements the monitor command
func (m *MonitorCmd) Run(g *CLI) error {
	if !isTerminal() {
		return errors.New("monitor needs a terminal; use 'aeropulse record' for headless runs")
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	surface := canvas.NewBraille(cfg.Display.Width, cfg.Display.Height)

	a, err := newApp(cfg, surface)
	if err != nil {
		return err
	}
	defer a.close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := ui.NewModel(ui.LoopActions{Ctx: runCtx, Loop: a.loop, Ctl: a.ctl}, a.cfg.Monitor.Window, a.log)
	model.PatientName = a.patient.Name
	model.SourceName = a.source.Name()

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Wire the bridge before the loop starts running callbacks
	bridge := ui.Bridge{Send: p.Send}
	a.ctl.Subscribe(bridge)
	a.rec.OnFrame = bridge.Frame

	go a.loop.Run(runCtx)

	_, runErr := p.Run()

	// Release audio before leaving
	if err := a.loop.Do(runCtx, func() error {
		a.ctl.Stop()
		return nil
	}); err != nil {
		a.log.Printf("[MAIN] Stop on exit: %v", err)
	}

	if runErr != nil {
		return fmt.Errorf("UI error: %w", runErr)
	}
	return nil
}

// RecordCmd records headlessly for a fixed duration and exports
type RecordCmd struct {
	Duration time.Duration `short:"d" default:"30s" help:"How long to record before exporting"`
	CSV      bool          `help:"Also export the raw data as CSV"`
}

// Run implements the record command
func (r *RecordCmd) Run(g *CLI) error {
	if r.Duration <= 0 {
		return errors.New("duration must be positive")
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var p *tea.Program
	if isTerminal() {
		p = tea.NewProgram(ui.NewRecordModel(r.Duration))
		a.ctl.Subscribe(ui.Bridge{Send: p.Send})
	}

	go a.loop.Run(runCtx)

	if p == nil {
		if err := a.loop.Do(runCtx, func() error { return a.ctl.Start(runCtx) }); err != nil {
			return err
		}
		return r.runHeadless(runCtx, a)
	}
	return r.runWithProgress(runCtx, a, p)
}

func (r *RecordCmd) runHeadless(ctx context.Context, a *app) error {
	// Interrupt ends the recording early and still exports
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Printf("Recording %s from %s (Ctrl+C to finish early)\n", r.Duration, a.source.Name())
	timer := time.NewTimer(r.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-sigCtx.Done():
	}

	out, csvPath, err := export(ctx, a, r.CSV)
	printExport(out, csvPath)
	return err
}

func (r *RecordCmd) runWithProgress(ctx context.Context, a *app, p *tea.Program) error {
	var (
		out     *live.Export
		csvPath string
		err     error
	)
	quit := make(chan struct{})
	done := make(chan struct{})

	// Started here so recorder events can reach the running program
	go func() {
		defer close(done)
		if err = a.loop.Do(ctx, func() error { return a.ctl.Start(ctx) }); err != nil {
			p.Send(ui.RecordDoneMsg{Err: err})
			return
		}
		timer := time.NewTimer(r.Duration)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-quit:
		}
		out, csvPath, err = export(ctx, a, r.CSV)
		p.Send(ui.RecordDoneMsg{Export: out, Err: err})
	}()

	final, runErr := p.Run()
	close(quit)
	<-done

	if runErr != nil {
		return fmt.Errorf("UI error: %w", runErr)
	}
	// Quitting early skips the model's result view
	if m, ok := final.(ui.RecordModel); ok && !m.Done {
		printExport(out, csvPath)
	} else if csvPath != "" {
		cli.PrintKeyValue("CSV", csvPath)
	}
	return err
}

// DevicesCmd lists audio input devices
type DevicesCmd struct{}

// Run implements the devices command
func (d *DevicesCmd) Run(g *CLI) error {
	devices, err := audio.ListInputDevices()
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("No input devices found")
		return nil
	}
	fmt.Println(cli.TitleStyle.Render("Input devices"))
	for _, dev := range devices {
		fmt.Println("  " + dev)
	}
	return nil
}

// export stops recording and writes the report, and the CSV when asked.
func export(ctx context.Context, a *app, withCSV bool) (*live.Export, string, error) {
	var (
		out     *live.Export
		csvPath string
	)
	err := a.loop.Do(ctx, func() error {
		a.ctl.Stop()
		var err error
		out, err = a.ctl.Export(ctx)
		if err != nil || !withCSV {
			return err
		}
		csvPath, err = a.ctl.ExportCSV()
		return err
	})
	return out, csvPath, err
}

func printExport(out *live.Export, csvPath string) {
	if out == nil {
		return
	}
	cli.PrintSuccess("Report exported")
	cli.PrintKeyValue("Report", out.Report.Path)
	cli.PrintKeyValue("Generator", out.Report.Generator)
	cli.PrintKeyValue("Pages", fmt.Sprint(out.Report.Pages))
	if out.Report.PrimaryErr != nil {
		cli.PrintWarning("simplified report used: " + out.Report.PrimaryErr.Error())
	}
	if out.LogPath != "" {
		cli.PrintKeyValue("Session log", out.LogPath)
	}
	if csvPath != "" {
		cli.PrintKeyValue("CSV", csvPath)
	}
}
