package internal_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/internal"
)

func TestServe_ReleasesResourcesOnFailedStart(t *testing.T) {
	t.Parallel()

	t.Run("startup hook fails", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("migrations failed")
		var closed atomic.Int32
		err := internal.Serve(http.NotFoundHandler(),
			internal.Address("127.0.0.1:0"),
			internal.StartupHook(func(context.Context) error { return errBoom }),
			internal.ShutdownHook(func(context.Context) error {
				closed.Add(1)
				return nil
			}),
		)

		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, int32(1), closed.Load())
	})

	t.Run("address in use", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = ln.Close() })

		errHook := errors.New("close failed")
		err = internal.Serve(http.NotFoundHandler(),
			internal.Address(ln.Addr().String()),
			internal.ShutdownHook(func(context.Context) error { return errHook }),
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errHook)
	})

	t.Run("clean shutdown runs hooks once", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var closed atomic.Int32
		done := make(chan error, 1)
		go func() {
			done <- internal.Serve(http.NotFoundHandler(),
				internal.Address("127.0.0.1:0"),
				internal.WithContext(ctx),
				internal.StartupHook(func(context.Context) error {
					cancel()
					return nil
				}),
				internal.ShutdownHook(func(context.Context) error {
					closed.Add(1)
					return nil
				}),
			)
		}()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
		assert.Equal(t, int32(1), closed.Load())
	})
}
