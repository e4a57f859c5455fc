package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Acters/linux-wallpaperengine/internal/config"
	"github.com/Acters/linux-wallpaperengine/internal/driver"
	"github.com/Acters/linux-wallpaperengine/internal/logger"
	"github.com/Acters/linux-wallpaperengine/internal/output"
)

func init() {
	// GLFW and OpenGL calls must all happen on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()
	config.Defaults(v)

	v.SetConfigName("linux-wallpaperengine")
	v.AddConfigPath("$XDG_CONFIG_HOME/linux-wallpaperengine")
	v.AddConfigPath("$HOME/.config/linux-wallpaperengine")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		}
	}

	cmd := &cobra.Command{
		Use:   "linux-wallpaperengine",
		Short: "Animated wallpaper renderer for X11 desktops",
		Long: `Renders an animated scene into the desktop background of one or more
monitors, cooperating with external compositors, or into a plain window.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("screen-root", nil, "output name to draw onto (repeatable)")
	flags.String("mode", string(config.ModeBackground), "presentation mode (background|window)")
	flags.Int("fps", 30, "maximum frames per second")
	flags.Int("window-width", 1280, "window width in window mode")
	flags.Int("window-height", 720, "window height in window mode")
	flags.Bool("floating", false, "undecorated always-on-top window in window mode")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")

	v.BindPFlag("screens", flags.Lookup("screen-root"))
	v.BindPFlag("mode", flags.Lookup("mode"))
	v.BindPFlag("fps", flags.Lookup("fps"))
	v.BindPFlag("window_width", flags.Lookup("window-width"))
	v.BindPFlag("window_height", flags.Lookup("window-height"))
	v.BindPFlag("window_floating", flags.Lookup("floating"))
	v.BindPFlag("log_level", flags.Lookup("log-level"))

	return cmd
}

func run(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log := logger.WithComponent("main")

	drv, err := driver.New(driver.Options{
		Title:      "linux-wallpaperengine",
		Background: cfg.Mode == config.ModeBackground,
		Floating:   v.GetBool("window_floating"),
		Width:      cfg.WindowWidth,
		Height:     cfg.WindowHeight,
		MaximumFPS: cfg.MaximumFPS,
	}, logger.WithComponent("driver"))
	if err != nil {
		return err
	}
	defer drv.Close()

	var out output.Output
	if cfg.Mode == config.ModeBackground {
		x11, err := output.NewX11Output(cfg.Screens, drv, logger.WithComponent("x11"))
		if err != nil {
			return err
		}
		out = x11
	} else {
		winOut := output.NewWindowOutput(cfg.WindowWidth, cfg.WindowHeight)
		drv.OnFramebufferResize(winOut.Resize)
		drv.Show()
		out = winOut
	}
	defer out.Close()

	drv.Bind(out, newDemoRenderer(drv))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		drv.RequestClose()
	}()

	log.Info().
		Str("mode", string(cfg.Mode)).
		Int("fps", cfg.MaximumFPS).
		Msg("entering frame loop")

	for !drv.CloseRequested() {
		if err := drv.DispatchEventQueue(); err != nil {
			return err
		}
	}

	log.Info().Uint32("frames", drv.FrameCounter()).Msg("shutting down")
	return nil
}
