package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"screen-capture-llm/src/analysis"
	"screen-capture-llm/src/capture"
	"screen-capture-llm/src/clipboard"
	"screen-capture-llm/src/eventloop"
	"screen-capture-llm/src/logutil"
	"screen-capture-llm/src/ocr"
	"screen-capture-llm/src/pointer"
	"screen-capture-llm/src/runtimeinit"
	"screen-capture-llm/src/statusdot"
)

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics.
	enableDPIAwareness()

	// The indicator surface may need to own the primary OS thread.
	runtime.LockOSThread()

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		SetupLogging:  logutil.Setup,
		InitClipboard: true,
	})
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	var copyText func(string) error
	if cfg.CopyResult {
		copyText = clipboard.Write
	}

	dot := statusdot.New(statusdot.Config{
		Surface:     cfg.StatusSurface,
		MaxLabelLen: cfg.LabelMaxLen,
	})

	loop := eventloop.New(eventloop.Config{
		Debounce:       time.Duration(cfg.DebounceMS) * time.Millisecond,
		PendingTimeout: time.Duration(cfg.PendingTimeoutSec) * time.Second,
		DoneRevert:     time.Duration(cfg.DoneRevertSec) * time.Second,
		AnalysisMode:   cfg.AnalysisMode,
		CopyResult:     cfg.CopyResult,
	}, dot, eventloop.Collaborators{
		CaptureFull:   capture.FullScreen,
		CaptureRegion: capture.Rect,
		ExtractText:   ocr.ExtractText,
		AnalyzeText:   analysis.TextFile,
		AnalyzeImage:  analysis.ImageFile,
		Pointer:       pointer.Position,
		CopyText:      copyText,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runtime.GOOS == "darwin" {
		// The menu-bar surface must run on the primary thread; the event
		// loop moves to a background goroutine and tears the surface down
		// when it exits.
		go func() {
			if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("event loop exited: %v", err)
			}
			dot.Stop()
		}()
		dot.RunOnCurrentThread()
	} else {
		dot.Start()
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("event loop exited: %v", err)
		}
		dot.Stop()
	}

	log.Printf("shutdown complete")
}
