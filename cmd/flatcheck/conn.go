package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/pf2-flat-check/internal/gameserver"
)

// serverFlags are the connection flags shared by commands that talk to flatcheckd.
type serverFlags struct {
	addr    string
	timeout time.Duration
}

func (f *serverFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.addr, "addr", "127.0.0.1:50061", "flatcheckd gRPC address")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Second, "per-call timeout")
}

// dial connects to flatcheckd and fails unless it reports SERVING.
//
// Postcondition: On success the caller owns the returned connection.
func (f *serverFlags) dial(ctx context.Context) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(f.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", f.addr, err)
	}
	hctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(hctx, &healthpb.HealthCheckRequest{Service: gameserver.ServiceName})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("health check %s: %w", f.addr, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		conn.Close()
		return nil, fmt.Errorf("%s is %s", f.addr, resp.GetStatus())
	}
	return conn, nil
}
