package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	mockFactory := func() GatewayProvider { return nil }

	registry.Register("test-provider", mockFactory)

	factory, err := registry.Get("test-provider")
	assert.NoError(t, err)
	assert.NotNil(t, factory)
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()

	// Initially should be empty
	assert.Empty(t, registry.Names())

	mockFactory := func() GatewayProvider { return nil }
	registry.Register("provider1", mockFactory)
	registry.Register("provider2", mockFactory)

	names := registry.Names()
	assert.Len(t, names, 2)
	assert.Contains(t, names, "provider1")
	assert.Contains(t, names, "provider2")
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := NewRegistry()

	factory, err := registry.Get("non-existent")
	assert.Error(t, err)
	assert.Nil(t, factory)
	assert.Contains(t, err.Error(), "is not registered")
}

func TestRegistry_CreateProvider(t *testing.T) {
	registry := NewRegistry()
	registry.Register("stub", func() GatewayProvider { return &stubProvider{} })

	gw, err := registry.CreateProvider("stub")
	assert.NoError(t, err)
	assert.NotNil(t, gw)

	gw, err = registry.CreateProvider("missing")
	assert.Error(t, err)
	assert.Nil(t, gw)
}

func TestDefaultRegistry(t *testing.T) {
	mockFactory := func() GatewayProvider { return nil }

	Register("default-test", mockFactory)

	factory, err := Get("default-test")
	assert.NoError(t, err)
	assert.NotNil(t, factory)

	assert.Contains(t, DefaultRegistry.Names(), "default-test")
}
