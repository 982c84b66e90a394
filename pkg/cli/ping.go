package cli

import (
	"context"
	"fmt"

	"github.com/TechXTT/tidbreader/pkg/runtime"
	"github.com/spf13/cobra"
)

// NewPingCmd builds the `ping` command: initialize the pool once, print
// its state and shut it down.
func NewPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Open the connection pool once and report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool := runtime.NewPool(runtime.PoolConfigFrom(cfg))
			return ping(cmd, pool)
		},
	}
}

func ping(cmd *cobra.Command, pool *runtime.Pool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer pool.Shutdown()

	if err := pool.Initialize(ctx); err != nil {
		return err
	}
	err := pool.Acquire(ctx, func(ctx context.Context, q runtime.Querier) error {
		var one int
		return q.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
	if err != nil {
		return fmt.Errorf("ping query: %w", err)
	}

	st := pool.Stats()
	cmd.Printf("ok: open=%d idle=%d max_open=%d\n", st.DB.OpenConnections, st.DB.Idle, st.DB.MaxOpenConnections)
	return nil
}
