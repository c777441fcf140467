package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

// Default snowflake node per binary. Replicas of the same binary must set
// SNOWFLAKE_NODE_ID to distinct values.
const (
	NodeMonolith   int64 = 1
	NodeStorefront int64 = 2
	NodeAdmin      int64 = 3
	NodeNotifier   int64 = 4
)

// SnowflakeModule provides the id generator for a binary.
func SnowflakeModule(defaultNode int64) fx.Option {
	return fx.Provide(func() (*snowflake.Node, error) {
		return NewSnowflakeNode(defaultNode)
	})
}

func NewSnowflakeNode(defaultNode int64) (*snowflake.Node, error) {
	id := defaultNode
	if raw := strings.TrimSpace(os.Getenv("SNOWFLAKE_NODE_ID")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SNOWFLAKE_NODE_ID %q: %w", raw, err)
		}
		id = parsed
	}
	return snowflake.NewNode(id)
}
