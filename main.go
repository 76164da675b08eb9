package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/veandco/go-sdl2/sdl"

	"ticker-frame/pkg/config"
	"ticker-frame/pkg/sourcesFs"
	"ticker-frame/screens/ticker"
)

func main() {
	// SDL must stay on the main OS thread
	runtime.LockOSThread()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupMemoryLimits()

	windowTitle := os.Getenv("TICKER_TITLE")
	if windowTitle == "" {
		windowTitle = "Ticker Frame"
	}

	sources := sourcesFs.Resolve(cfg.SourcesBucket, cfg.SourcesKey, cfg.SourcesPath)

	if err := initializeSDL2(); err != nil {
		log.Fatalf("Failed to initialize SDL2: %v", err)
	}
	defer func() {
		log.Println("Shutting down SDL2...")
		sdl.Quit()
	}()

	window, err := createWindow(windowTitle, int32(cfg.WindowWidth), int32(cfg.WindowHeight), cfg.Fullscreen)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer window.Destroy()

	renderer, err := createRenderer(window)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Destroy()

	screen, err := ticker.NewTickerScreen(window, renderer, cfg, sources)
	if err != nil {
		log.Fatalf("Failed to create ticker: %v", err)
	}
	defer screen.Close()

	log.Printf("Starting %s | %dx%d @ %.0f fps", windowTitle, cfg.WindowWidth, cfg.WindowHeight, cfg.FrameRate)
	runGameLoop(screen, cfg.FrameBudget())

	log.Println("Ticker shutting down...")
}

// setupMemoryLimits keeps the heap small on kiosk-class devices
func setupMemoryLimits() {
	debug.SetGCPercent(50)
	debug.SetMemoryLimit(128 << 20)
	log.Printf("Memory limits configured: GOGC=50, GOMEMLIMIT=128MiB")
}

// initializeSDL2 initializes SDL2, walking a list of video drivers until one works
func initializeSDL2() error {
	var videoDrivers []string
	if envDriver := os.Getenv("SDL_VIDEODRIVER"); envDriver != "" {
		log.Printf("Using environment SDL_VIDEODRIVER: %s", envDriver)
		videoDrivers = []string{envDriver, "software", "dummy"}
	} else if runtime.GOOS == "darwin" {
		videoDrivers = []string{"cocoa", "software", "dummy"}
	} else {
		videoDrivers = []string{"kmsdrm", "wayland", "x11", "fbcon", "software", "dummy"}
	}

	for _, driver := range videoDrivers {
		log.Printf("Attempting SDL2 initialization with %s driver", driver)
		if err := trySDLInitialization(driver); err != nil {
			log.Printf("SDL2 initialization failed with %s driver: %v", driver, err)
			continue
		}
		log.Printf("SDL2 successfully initialized with %s driver", driver)
		return nil
	}

	return fmt.Errorf("all SDL2 video drivers failed")
}

func trySDLInitialization(driver string) error {
	sdl.Quit()

	os.Setenv("SDL_VIDEODRIVER", driver)
	sdl.SetHint(sdl.HINT_VIDEODRIVER, driver)

	switch driver {
	case "kmsdrm":
		sdl.SetHint("SDL_KMSDRM_REQUIRE_DRM_MASTER", "1")
		sdl.SetHint(sdl.HINT_RENDER_DRIVER, "opengles2")
	case "cocoa":
		sdl.SetHint(sdl.HINT_RENDER_DRIVER, "opengl")
	case "fbcon":
		sdl.SetHint("SDL_FBDEV", "/dev/fb0")
		sdl.SetHint(sdl.HINT_RENDER_DRIVER, "software")
	case "wayland":
		sdl.SetHint("SDL_VIDEO_WAYLAND_WMCLASS", "ticker-frame")
	}
	sdl.SetHint(sdl.HINT_RENDER_BATCHING, "1")
	sdl.SetHint(sdl.HINT_VIDEO_MINIMIZE_ON_FOCUS_LOSS, "0")
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "1")

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("SDL_INIT_VIDEO failed: %w", err)
	}

	driverName, err := sdl.GetCurrentVideoDriver()
	if err != nil {
		return fmt.Errorf("failed to get video driver: %w", err)
	}
	log.Printf("Video driver initialized: %s", driverName)
	return nil
}

// createWindow creates the ticker window, borderless unless fullscreen
func createWindow(title string, width, height int32, fullscreen bool) (*sdl.Window, error) {
	var flags uint32 = sdl.WINDOW_SHOWN
	if fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	} else {
		flags |= sdl.WINDOW_BORDERLESS
	}

	return sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, flags)
}

// createRenderer prefers an accelerated VSync renderer and falls back to software
func createRenderer(window *sdl.Window) (*sdl.Renderer, error) {
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		log.Printf("Hardware acceleration failed, trying software: %v", err)
		renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
		if err != nil {
			return nil, err
		}
	}

	renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)
	return renderer, nil
}

// runGameLoop polls events, updates and draws at the target frame rate
func runGameLoop(screen *ticker.TickerScreen, frameTime time.Duration) {
	running := true
	lastTime := time.Now()

	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN && e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					running = false
				}
			}
		}

		if err := screen.Update(); err != nil {
			log.Printf("Ticker update error: %v", err)
			break
		}

		if err := screen.Draw(); err != nil {
			log.Printf("Ticker draw error: %v", err)
			break
		}

		elapsed := time.Since(lastTime)
		if elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
		lastTime = time.Now()
	}
}
