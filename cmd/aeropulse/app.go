package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aeropulse/aeropulse/internal/audio"
	"github.com/aeropulse/aeropulse/internal/canvas"
	"github.com/aeropulse/aeropulse/internal/config"
	"github.com/aeropulse/aeropulse/internal/live"
	"github.com/aeropulse/aeropulse/internal/locale"
	"github.com/aeropulse/aeropulse/internal/logging"
	"github.com/aeropulse/aeropulse/internal/monitor"
	"github.com/aeropulse/aeropulse/internal/patient"
	"github.com/aeropulse/aeropulse/internal/report"
	"github.com/aeropulse/aeropulse/internal/sched"
)

const debugLogFile = "aeropulse-debug.log"

// app is everything a command needs, wired from the config.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	loop    *sched.Loop
	source  audio.Source
	patient *patient.Patient
	format  locale.Format
	rec     *monitor.Recorder
	ctl     *live.Controller
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(g *CLI) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.Config != "" {
		cfg, err = config.Load(g.Config)
	} else {
		cfg, err = config.LoadOptional(config.DefaultFile)
	}
	if err != nil {
		return nil, err
	}

	if g.Source != "" {
		cfg.Input.Source = g.Source
	}
	if g.File != "" {
		cfg.Input.File = g.File
		if g.Source == "" {
			cfg.Input.Source = config.SourceFile
		}
	}
	if g.Device != "" {
		cfg.Input.Device = g.Device
	}
	if g.Output != "" {
		cfg.Report.OutputDir = g.Output
	}
	if g.Patients != "" {
		cfg.Patient.File = g.Patients
	}
	if g.Patient != 0 {
		cfg.Patient.ID = g.Patient
	}
	if g.Logs {
		cfg.Report.SessionLog = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSource builds the configured audio input.
func newSource(in config.InputConfig) audio.Source {
	switch in.Source {
	case config.SourceFile:
		return &audio.FileSource{Path: in.File, BufferSize: in.BufferSize, Now: time.Now}
	case config.SourceSynth:
		return &audio.SynthSource{Frequency: in.ToneHz, SampleRate: in.SampleRate, BufferSize: in.BufferSize, Now: time.Now}
	}
	return &audio.MicSource{Device: in.Device, SampleRate: in.SampleRate, BufferSize: in.BufferSize}
}

// selectPatient returns the configured patient, or the demo patient when no
// fixture file is set. ID 0 picks the first patient in the file.
func selectPatient(pc config.PatientConfig) (*patient.Patient, error) {
	if pc.File == "" {
		p := patient.Demo()
		return &p, nil
	}

	list, err := patient.Load(pc.File)
	if err != nil {
		return nil, err
	}
	if pc.ID == 0 {
		if len(list) == 0 {
			return nil, fmt.Errorf("%s: %w", pc.File, patient.ErrNotFound)
		}
		return &list[0], nil
	}
	p, err := patient.Find(list, pc.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pc.File, err)
	}
	return &p, nil
}

// newApp wires the recorder, report pipeline and controller. surface may be
// nil for headless runs.
func newApp(cfg *config.Config, surface canvas.Surface) (*app, error) {
	p, err := selectPatient(cfg.Patient)
	if err != nil {
		return nil, err
	}

	// Debug log is best effort; a nil logger discards
	log, _ := logging.OpenDebugLog(debugLogFile)

	a := &app{
		cfg:     cfg,
		log:     log,
		loop:    sched.NewLoop(cfg.Display.FrameInterval),
		source:  newSource(cfg.Input),
		patient: p,
		format:  locale.Detect(),
	}
	a.log.Printf("[MAIN] Source %s, timezone %q (%s), patient %s", a.source.Name(), a.format.Timezone, a.format.Country, p.Name)

	a.rec = monitor.NewRecorder(cfg.Recorder(), a.loop, a.source, nil)
	a.rec.Surface = surface
	a.rec.Label = a.format.Time
	a.rec.NewID = uuid.NewString
	a.rec.Log = log

	pipeline := report.NewPipeline(cfg.Report.Title, cfg.Report.OutputDir, log)
	a.ctl = live.New(a.rec, pipeline, a.loop)
	a.ctl.Patient = p
	a.ctl.FormatTime = a.format.DateTime
	a.ctl.CSVDir = cfg.Report.OutputDir
	a.ctl.SessionLog = cfg.Report.SessionLog
	a.ctl.Log = log

	return a, nil
}

func (a *app) close() {
	a.log.Close()
}
