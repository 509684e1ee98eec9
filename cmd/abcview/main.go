// Package main is the entry point for the geometry cache viewer.
package main

import (
	"fmt"
	"os"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/abcproc/internal/config"
	"github.com/Faultbox/abcproc/internal/logger"
	"github.com/Faultbox/abcproc/internal/viewer"
	"github.com/Faultbox/abcproc/pkg/importer"
	"github.com/Faultbox/abcproc/pkg/render"
	"github.com/Faultbox/abcproc/pkg/timesample"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Archive.Path == "" {
		fmt.Fprintln(os.Stderr, "No archive configured; pass -archive or set archive.path")
		os.Exit(1)
	}

	logger.Info("=== abcview ===", zap.String("archive", cfg.Archive.Path))

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	scene := render.NewScene()
	proc := importer.NewProcedural()
	proc.SetLogger(logger.Log)
	proc.SetFilePath(cfg.Archive.Path)
	proc.SetFrameRate(cfg.Playback.FrameRate)
	proc.SetFrame(cfg.Playback.Frame)

	for _, objCfg := range cfg.Objects {
		obj := proc.AddObject(objCfg.Path)
		sh := scene.ShaderByName("default")
		if len(objCfg.Attributes) > 0 {
			sh = &render.Shader{Name: objCfg.Path}
			scene.AddShader(sh)
			for _, name := range objCfg.Attributes {
				sh.RequestAttributeName(name)
			}
		}
		obj.AddShader(sh)
	}

	win, err := viewer.NewWindow(viewer.WindowConfig{
		Title:      "abcview - " + cfg.Archive.Path,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	renderer, err := viewer.NewRenderer()
	if err != nil {
		return err
	}
	defer renderer.Close()

	progress := &importer.Progress{}
	if err := proc.Generate(scene, progress); err != nil {
		return err
	}
	renderer.Sync(scene)

	frame := cfg.Playback.Frame
	endFrame := archiveEndFrame(proc)
	playing := true

	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				if e.Type != sdl.KEYDOWN {
					continue
				}
				switch e.Keysym.Sym {
				case sdl.K_ESCAPE, sdl.K_q:
					return nil
				case sdl.K_SPACE:
					playing = !playing
				case sdl.K_LEFT:
					frame--
				case sdl.K_RIGHT:
					frame++
				case sdl.K_HOME:
					frame = 0
				}
			case *sdl.MouseMotionEvent:
				if e.State&sdl.ButtonLMask() != 0 {
					renderer.Orbit(float32(e.XRel)*0.01, float32(-e.YRel)*0.01)
				}
			case *sdl.MouseWheelEvent:
				if e.Y > 0 {
					renderer.Zoom(0.9)
				} else if e.Y < 0 {
					renderer.Zoom(1.1)
				}
			}
		}

		if playing {
			frame++
		}
		if frame > endFrame {
			if cfg.Playback.Loop {
				frame = 0
			} else {
				frame = endFrame
			}
		}
		if frame < 0 {
			frame = 0
		}

		proc.SetFrame(frame)
		if err := proc.Generate(scene, progress); err != nil {
			return err
		}
		renderer.Sync(scene)

		w, h := win.GetSize()
		renderer.Draw(scene, w, h)
		win.SwapBuffers()

		if !cfg.Viewer.VSync {
			sdl.Delay(uint32(1000 / cfg.Playback.FrameRate))
		}
	}
}

// archiveEndFrame derives the playback range from the loaded caches.
func archiveEndFrame(proc *importer.Procedural) float64 {
	maxTime := 0.0
	for _, obj := range proc.Objects() {
		cached := obj.CachedData()
		samplings := []timesample.TimeSampling{
			cached.Vertices.TimeSampling(),
			cached.CurveKeys.TimeSampling(),
			cached.Transforms.TimeSampling(),
		}
		for _, ts := range samplings {
			if ts.Count > 1 {
				if end := ts.SampleTime(ts.Count - 1); end > maxTime {
					maxTime = end
				}
			}
		}
	}
	return maxTime * proc.FrameRate()
}
