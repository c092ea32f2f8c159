package common

import (
	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/random"
)

var snowflakeNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	snowflakeNode = node
}

// UUIDint64 generates a cluster-unique int64 id.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// RandomToken generates an opaque token for email verification and password reset flows.
func RandomToken() string {
	return random.String(32, random.Hex)
}
