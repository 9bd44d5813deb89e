package testutil

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

// NewBufconnClient serves a gRPC server over an in-memory listener and
// returns a client connection to it. register installs the services under
// test. Both ends are torn down by t.Cleanup.
//
// Postcondition: Returns a ready-to-use client connection, or fails the test.
func NewBufconnClient(t *testing.T, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	return NewBufconnClientWithOptions(t, nil, register)
}

// NewBufconnClientWithOptions is NewBufconnClient with server options, e.g.
// an interceptor chain.
func NewBufconnClientWithOptions(t *testing.T, opts []grpc.ServerOption, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer(opts...)
	register(srv)
	go func() {
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		srv.Stop()
		t.Fatalf("dialing bufconn: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
	})
	return conn
}
