// Store selection for the boardtree CLI.
package cli

import (
	"fmt"

	"github.com/dukaforge/boardtree/internal/boltstore"
	"github.com/dukaforge/boardtree/internal/sqlite"
	"github.com/dukaforge/boardtree/pkg/types"
)

// effectiveBackend returns the backend name following the precedence
// chain: --backend flag > config.yaml > sqlite.
func effectiveBackend() string {
	if flags.backend != "" {
		return flags.backend
	}
	if configValues.backend != "" {
		return configValues.backend
	}
	return types.BackendSQLite
}

// openStore resolves the data directory, selects the configured backend
// and opens it. The caller must defer store.Close().
func openStore() (types.PageStore, types.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend:   effectiveBackend(),
		DataDir:   dataDir,
		EmbedTree: configValues.embedTree,
	}

	var store types.PageStore
	switch cfg.Backend {
	case types.BackendSQLite:
		store = sqlite.NewStore()
	case types.BackendBolt:
		store = boltstore.NewStore()
	default:
		return nil, cfg, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
	}

	if err := store.Open(cfg); err != nil {
		return nil, cfg, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	return store, cfg, nil
}
