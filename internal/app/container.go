package app

import (
	"context"
	"time"

	archiveapp "github.com/doeshing/calltrail/internal/application/archive"
	recordapp "github.com/doeshing/calltrail/internal/application/record"
	"github.com/doeshing/calltrail/internal/infrastructure/archive"
	"github.com/doeshing/calltrail/internal/infrastructure/cache"
	"github.com/doeshing/calltrail/internal/infrastructure/config"
	"github.com/doeshing/calltrail/internal/infrastructure/journal"
	"github.com/doeshing/calltrail/internal/infrastructure/recorder"
	"github.com/doeshing/calltrail/internal/infrastructure/redact"
	"github.com/doeshing/calltrail/internal/pkg/logger"
	"github.com/doeshing/calltrail/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	RecordService  *recordapp.Service
	ArchiveService *archiveapp.Service
	ConfigProvider ports.ConfigProvider
	Journal        ports.RunJournal
	Logger         ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	toolCache := cache.New(time.Duration(cfg.Cache.TTLMinutes) * time.Minute)
	locator := archive.NewPathLocator(cfg.Archive.CompressorDir, toolCache)
	archiver := archive.New(archive.NewSevenZip(locator), log)

	var runJournal ports.RunJournal
	if cfg.Journal.On() {
		runJournal = journal.Open(cfg.Journal.Path)
	}

	recordService := &recordapp.Service{
		ConfigProvider: cfgLoader,
		Redactor:       redact.New(),
		Recorder:       recorder.New(cfg.Archive.Namespace, log),
		Logger:         log,
	}

	archiveService := &archiveapp.Service{
		ConfigProvider: cfgLoader,
		Archiver:       archiver,
		Journal:        runJournal,
		Logger:         log,
	}

	return &Container{
		RecordService:  recordService,
		ArchiveService: archiveService,
		ConfigProvider: cfgLoader,
		Journal:        runJournal,
		Logger:         log,
	}, nil
}
