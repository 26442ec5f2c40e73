package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/bizdir-ops/internal/config"
	"github.com/andresuchdata/bizdir-ops/internal/credentials"
)

// Open returns the Store named by cfg.App.RecordsBackend. Firestore
// credentials come from the same chain the storage layer uses.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.App.RecordsBackend) {
	case "", "firestore":
		chain := credentials.DefaultChain(cfg.Storage.CredentialsEnv, cfg.Storage.CredentialsFile)
		creds, err := chain.Resolve(ctx, FirestoreScopes...)
		if err != nil {
			return nil, err
		}
		return NewFirestoreStore(ctx, cfg.Firebase.ProjectID, creds)
	case "postgres":
		return NewPostgresStore(ctx, cfg.Database.URL)
	default:
		return nil, fmt.Errorf("unknown records backend %q", cfg.App.RecordsBackend)
	}
}
