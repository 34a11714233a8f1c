package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	fmt.Println("Mudra - ASL Sign Classifier Demo")

	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	// Initialize the store
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Stored settings apply unless overridden on the command line
	settings, err := st.Settings().List()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if err := cfg.Apply(settings, config.ExplicitKeys(flag.CommandLine)); err != nil {
		log.Fatalf("Invalid stored setting: %v", err)
	}

	camera := newCamera(cfg)
	application := app.New(app.Config{
		Camera:   camera,
		Interval: cfg.Interval,
	})
	defer application.Close()

	if cfg.StaticDir != "" {
		fmt.Printf("Serving static files from: %s\n", cfg.StaticDir)
	}

	srv := server.New(server.Config{
		StaticDir: cfg.StaticDir,
		Store:     st,
		App:       application,
	})
	defer srv.Close()

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if cfg.Headless {
		<-sigCh
		log.Println("Shutting down")
		return
	}

	t := tray.New()
	t.Update(application.Snapshot())
	unsubscribe := application.Subscribe(t.Update)
	defer unsubscribe()

	t.OnToggle(func() {
		application.Toggle(context.Background())
	})
	t.OnOpen(func() {
		if err := openBrowser(pageURL(cfg.Addr)); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})

	t.OnQuit(func() {
		application.Close()
	})

	go func() {
		<-sigCh
		t.Quit()
	}()

	t.Run()
	log.Println("Shutting down")
}

// newCamera returns the webcam, or a synthetic camera when -mock-camera is set.
func newCamera(cfg config.Config) capture.Camera {
	if cfg.MockCamera {
		frames := capture.SyntheticFrames(cfg.Width, cfg.Height, 30)
		cam := capture.NewMockCamera(frames, true)
		cam.SetFPS(cfg.FPS)
		return cam
	}
	return capture.NewCamera(capture.Config{
		DeviceID: cfg.DeviceID,
		Width:    cfg.Width,
		Height:   cfg.Height,
		FPS:      cfg.FPS,
	})
}

// pageURL turns a listen address into a browsable URL.
func pageURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
