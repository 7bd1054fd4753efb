package store

import (
	"context"
	"testing"

	"github.com/documentfs/mongofs"
	"github.com/documentfs/mongofs/config"
	"github.com/documentfs/mongofs/internal/util"
	"github.com/documentfs/mongofs/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDial_PicksDriverByScheme(t *testing.T) {
	RegisterBuiltins()

	cfg := config.NewConfig(&config.ConfigOverride{URI: util.Pointer("memory://")})
	s, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, s)
}

func TestDial_UnknownScheme(t *testing.T) {
	RegisterBuiltins()

	cfg := config.NewConfig(&config.ConfigOverride{URI: util.Pointer("carrierpigeon://coop")})
	_, err := Dial(context.Background(), cfg)
	assert.ErrorContains(t, err, "no store driver")
}

func TestRegister_CustomDriver(t *testing.T) {
	called := false
	Register("custom", func(ctx context.Context, cfg *config.Config) (mongofs.Store, error) {
		called = true
		return memstore.New(), nil
	})

	cfg := config.NewConfig(&config.ConfigOverride{URI: util.Pointer("custom://anywhere")})
	_, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, called)
}
