package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func mustRegistry(t *testing.T, jobs ...Job) *Registry {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return registry
}

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	jobA := &stubJob{name: "tracking_import"}
	jobB := &stubJob{name: "stock_sync"}
	registry := mustRegistry(t, jobA, nil, jobB)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("jobs returned out of order")
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryRejectsBadNames(t *testing.T) {
	registry := mustRegistry(t)
	require.NoError(t, registry.Register(&stubJob{name: "tracking_import"}))
	require.ErrorContains(t, registry.Register(&stubJob{name: " tracking_import "}), "already registered")
	require.ErrorContains(t, registry.Register(&stubJob{name: "  "}), "name is required")
	require.Error(t, registry.Register(nil))

	_, err := NewRegistry(&stubJob{name: "a"}, &stubJob{name: "a"})
	require.Error(t, err)
}
