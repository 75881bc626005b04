package stores

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/mscno/collab/server/engine"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newTestDatastoreStore connects to the Datastore emulator. Every store gets its own
// project id so tests do not see each other's rows.
func newTestDatastoreStore(t *testing.T) *DatastoreStore {
	t.Helper()
	host := os.Getenv("DATASTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("Skipping Datastore tests: DATASTORE_EMULATOR_HOST not set. Run 'gcloud beta emulators datastore start' first.")
	}
	ctx := context.Background()
	projectID := fmt.Sprintf("collab-test-%d", time.Now().UnixNano())
	client, err := datastore.NewClient(ctx, projectID, option.WithEndpoint(host), option.WithoutAuthentication())
	require.NoError(t, err)
	s := NewDatastoreStore(slog.Default(), client)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDatastoreStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) engine.Store {
		return newTestDatastoreStore(t)
	})
}
