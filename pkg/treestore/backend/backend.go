// Package backend selects a treestore implementation from configuration.
package backend

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"github.com/turboairmx/quotesync/pkg/treestore/badgerstore"
	"github.com/turboairmx/quotesync/pkg/treestore/memory"
	"github.com/turboairmx/quotesync/pkg/treestore/rtdb"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured store and a closer the caller must defer.
func Open(ctx context.Context, cfg config.StoreConfig, logg *logger.Logger) (treestore.Store, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.StoreDriverMemory, "":
		return memory.New(), nopCloser{}, nil
	case config.StoreDriverBadger:
		store, err := badgerstore.Open(ctx, badgerstore.Options{Dir: cfg.BadgerDir}, logg)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StoreDriverRTDB:
		client, err := rtdb.New(ctx, rtdb.Options{
			DatabaseURL:     cfg.DatabaseURL,
			CredentialsJSON: cfg.CredentialsJSON,
			Timeout:         cfg.HTTPTimeout,
		}, logg)
		if err != nil {
			return nil, nil, err
		}
		return client, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
