package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"depcatalog/internal/types"
)

func dep(id, target, depType string) types.DependencyRow {
	d := types.DependencyRow{ID: id, ServiceID: "consumer", Name: id, Type: depType}
	if target != "" {
		d.TargetServiceID = &target
	}
	return d
}

func TestComputeMajority(t *testing.T) {
	got := New().Compute([]types.DependencyRow{
		dep("1", "db", "database"),
		dep("2", "db", "rest"),
		dep("3", "db", "database"),
		dep("4", "api", "rest"),
	})
	assert.Equal(t, map[string]string{"db": "database", "api": "rest"}, got)
}

func TestComputeTieKeepsFirstSeen(t *testing.T) {
	inf := New()
	got := inf.Compute([]types.DependencyRow{
		dep("1", "svc", "grpc"),
		dep("2", "svc", "rest"),
	})
	assert.Equal(t, "grpc", got["svc"])

	got = inf.Compute([]types.DependencyRow{
		dep("2", "svc", "rest"),
		dep("1", "svc", "grpc"),
	})
	assert.Equal(t, "rest", got["svc"])
}

func TestComputeSkipsUnassociatedAndUntyped(t *testing.T) {
	got := New().Compute([]types.DependencyRow{
		dep("1", "", "database"),
		dep("2", "svc", ""),
	})
	assert.Empty(t, got)
	_, ok := got["svc"]
	assert.False(t, ok)
}

func TestDominant(t *testing.T) {
	assert.Equal(t, "cache", Dominant([]types.DependencyRow{
		dep("1", "", "cache"),
		dep("2", "", "database"),
		dep("3", "", "cache"),
	}))
	assert.Equal(t, "", Dominant(nil))
}
