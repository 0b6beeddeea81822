package handlers

import (
	"context"
	"time"

	"cover-dedup/internal/database"
	"cover-dedup/internal/indexer"
	"cover-dedup/internal/startup"
)

type Handlers struct {
	db      *database.Database
	crawler *indexer.Manager
	config  *startup.Config

	// appCtx is the process-lifetime context crawl runs inherit from,
	// so a crawl outlives the request that started it but stops on
	// shutdown.
	appCtx context.Context

	startTime time.Time
}

func New(appCtx context.Context, db *database.Database, crawler *indexer.Manager, config *startup.Config) *Handlers {
	return &Handlers{
		db:        db,
		crawler:   crawler,
		config:    config,
		appCtx:    appCtx,
		startTime: time.Now(),
	}
}
