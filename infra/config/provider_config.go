package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// ProviderConfig manages gateway credentials per tenant and provider. Reads
// go through an in-memory cache; SQLite is the persistence layer behind it.
type ProviderConfig struct {
	configs map[string]map[string]string
	storage *SQLiteStorage
	mu      sync.RWMutex
}

// NewProviderConfig creates a provider configuration store backed by SQLite.
// When the database cannot be opened the store degrades to memory-only mode.
func NewProviderConfig(dbPath string) *ProviderConfig {
	config := &ProviderConfig{
		configs: make(map[string]map[string]string),
	}

	storage, err := NewSQLiteStorage(dbPath)
	if err != nil {
		log.Printf("Warning: Failed to initialize SQLite storage (%v), falling back to memory-only mode", err)
		return config
	}
	config.storage = storage

	if err := config.loadFromStorage(); err != nil {
		log.Printf("Warning: Failed to load configurations from SQLite: %v", err)
	}

	return config
}

// loadFromStorage loads all tenant credentials from SQLite into the cache.
func (c *ProviderConfig) loadFromStorage() error {
	if c.storage == nil {
		return fmt.Errorf("SQLite storage not initialized")
	}

	configs, err := c.storage.LoadAllTenantConfigs()
	if err != nil {
		return fmt.Errorf("failed to load configs from SQLite: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range configs {
		c.configs[k] = v
	}
	return nil
}

// SetTenantConfig stores gateway credentials for a specific tenant and provider.
func (c *ProviderConfig) SetTenantConfig(tenantID, providerName string, config map[string]string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if len(config) == 0 {
		return fmt.Errorf("config cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage != nil {
		if err := c.storage.SaveTenantConfig(tenantID, providerName, config); err != nil {
			return fmt.Errorf("failed to save config to SQLite: %w", err)
		}
	}

	c.configs[tenantProviderKey(tenantID, providerName)] = config
	return nil
}

// GetTenantConfig returns gateway credentials for a specific tenant and provider.
func (c *ProviderConfig) GetTenantConfig(tenantID, providerName string) (map[string]string, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID cannot be empty")
	}

	key := tenantProviderKey(tenantID, providerName)

	c.mu.RLock()
	config, exists := c.configs[key]
	c.mu.RUnlock()

	// Cache miss: another replica may have written the row.
	if !exists && c.storage != nil {
		stored, err := c.storage.LoadTenantConfig(tenantID, providerName)
		if err == nil {
			c.mu.Lock()
			c.configs[key] = stored
			c.mu.Unlock()
			config = stored
			exists = true
		}
	}

	if !exists {
		return nil, fmt.Errorf("no configuration found for tenant: %s, provider: %s", tenantID, providerName)
	}

	// Return a copy to prevent external modification
	configCopy := make(map[string]string)
	for k, v := range config {
		configCopy[k] = v
	}
	return configCopy, nil
}

// DeleteTenantConfig deletes a tenant's credentials for one provider.
func (c *ProviderConfig) DeleteTenantConfig(tenantID, providerName string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage != nil {
		if err := c.storage.DeleteTenantConfig(tenantID, providerName); err != nil {
			return fmt.Errorf("failed to delete config from SQLite: %w", err)
		}
	}

	delete(c.configs, tenantProviderKey(tenantID, providerName))
	return nil
}

// GetStats returns configuration and storage statistics
func (c *ProviderConfig) GetStats() (map[string]any, error) {
	stats := make(map[string]any)

	c.mu.RLock()
	stats["memory_configs"] = len(c.configs)
	c.mu.RUnlock()

	if c.storage != nil {
		sqliteStats, err := c.storage.GetStats()
		if err != nil {
			stats["sqlite_error"] = err.Error()
		} else {
			stats["sqlite"] = sqliteStats
		}
	} else {
		stats["sqlite"] = "not_available"
	}

	return stats, nil
}

// Close releases the underlying storage.
func (c *ProviderConfig) Close() error {
	if c.storage != nil {
		return c.storage.Close()
	}
	return nil
}

func tenantProviderKey(tenantID, providerName string) string {
	return fmt.Sprintf("%s_%s", strings.ToUpper(tenantID), strings.ToLower(providerName))
}
