package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/documentfs/mongofs/config"
	"github.com/documentfs/mongofs/filesystem"
	"github.com/documentfs/mongofs/internal/util"
	"github.com/documentfs/mongofs/server"
	"github.com/documentfs/mongofs/store"
)

func main() {
	var (
		configPath string
		uri        string
		verbose    int
		umount     bool
		wipe       bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (yaml or json)")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&uri, "uri", "", "Store URI; overrides the config file value")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.BoolVar(&wipe, "wipe", false, "Delete every record and re-create the root before mounting")
	flag.IntVar(&verbose, "verbose", 3, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", 3, "--verbose (shorthand)")
	flag.Parse()

	override := &config.ConfigOverride{LogLvl: &verbose}
	if configPath != "" {
		fileOverride, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			util.InitializeLogger(util.ErrorLevel)
			l := util.GetLogger("main")
			l.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		fileOverride.LogLvl = &verbose
		override = fileOverride
	}
	if uri != "" {
		override.URI = &uri
	}
	cfg := config.NewConfig(override)

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")

	mnt := flag.Arg(0)
	logger.Info().Int("verbose", verbose).Str("uri", cfg.URI).Str("mnt", mnt).Msg("mongofs initializing")
	if mnt == "" && !wipe {
		logger.Fatal().Msg("Mount point not specified; it must be passed as the argument")
	}
	if umount && mnt != "" {
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	store.RegisterBuiltins()

	ctx := context.Background()
	st, err := store.Dial(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to dial record store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to close record store")
		}
	}()

	engine, err := filesystem.NewEngine(ctx, st, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize engine")
	}

	if wipe {
		if err := engine.Wipe(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Wipe failed")
		}
		logger.Info().Msg("Store wiped")
		if mnt == "" {
			return
		}
	}

	fs := server.New(engine, cfg)
	if err := fs.Serve(mnt); err != nil {
		logger.Fatal().Err(err).Msg("Failed to mount filesystem")
	}
	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	if err := fs.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	} else {
		logger.Info().Msg("Filesystem unmounted successfully")
	}
}
