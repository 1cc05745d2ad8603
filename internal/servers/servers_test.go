package servers

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"custom-id-generator/internal/customid"
	generator_storage "custom-id-generator/internal/generator-storage"
	"custom-id-generator/internal/inventory"
	"custom-id-generator/internal/issuer"
	"custom-id-generator/internal/lib"
	"custom-id-generator/internal/metrics"
	"custom-id-generator/internal/pb"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestIssuer(t *testing.T, reg *prometheus.Registry) *issuer.Issuer {
	t.Helper()

	catalog := inventory.NewCatalog()
	require.NoError(t, catalog.Replace(
		[]inventory.User{{ID: "1", IsAdmin: true}, {ID: "2"}, {ID: "3"}},
		[]inventory.Inventory{
			{
				ID:          "inv1",
				OwnerID:     "1",
				WriteAccess: []string{"2"},
				Template:    customid.Template{customid.Literal(1, "LAP"), customid.Sequence(2)},
			},
			{
				ID:       "full",
				OwnerID:  "1",
				Template: customid.Template{customid.Literal(1, "X"), customid.Sequence(2)},
			},
		},
	))

	store := generator_storage.NewMemoryStore(0)
	// every allocation for "full" asks for more than its counter can hold
	limited := generator_storage.NewMemoryStore(1)
	random := lib.NewSeededRandom(9, 9)
	clock := lib.FixedClock(time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC))

	gen, err := customid.NewGenerator(customid.Deps{
		Random: random,
		Clock:  clock,
		Sequences: customid.SequenceAllocatorFunc(func(ctx context.Context, scope string) (int64, error) {
			if scope == "full" {
				return limited.AllocateBlock(ctx, scope, 2)
			}
			return store.Allocate(ctx, scope)
		}),
		Uniqueness: store,
	})
	require.NoError(t, err)

	iss, err := issuer.New(issuer.Config{
		Catalog:   catalog,
		Generator: gen,
		Scopes:    store,
		Random:    random,
		Clock:     clock,
		Metrics:   metrics.New(reg),
		Logger:    discard,
	})
	require.NoError(t, err)

	return iss
}

func newBufconnClient(t *testing.T, iss *issuer.Issuer) pb.GeneratorClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGrpcServer(0, iss, discard)
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewGeneratorClient(conn)
}
