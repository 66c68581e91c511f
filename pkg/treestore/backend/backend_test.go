package backend

import (
	"context"
	"testing"

	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/treestore/badgerstore"
	"github.com/turboairmx/quotesync/pkg/treestore/memory"
	"github.com/turboairmx/quotesync/pkg/treestore/rtdb"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	store, closer, err := Open(ctx, config.StoreConfig{Driver: "memory"}, nil)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
	_ = closer.Close()

	store, closer, err = Open(ctx, config.StoreConfig{Driver: "badger", BadgerDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("badger: %v", err)
	}
	if _, ok := store.(*badgerstore.Store); !ok {
		t.Fatalf("expected badger store, got %T", store)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close badger: %v", err)
	}

	store, _, err = Open(ctx, config.StoreConfig{Driver: "RTDB", DatabaseURL: "http://127.0.0.1:9000"}, nil)
	if err != nil {
		t.Fatalf("rtdb: %v", err)
	}
	if _, ok := store.(*rtdb.Client); !ok {
		t.Fatalf("expected rtdb client, got %T", store)
	}

	if _, _, err := Open(ctx, config.StoreConfig{Driver: "postgres"}, nil); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
