package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientKey(t *testing.T) {
	c := &Client{prefix: "arbscan:"}
	assert.Equal(t, "arbscan:wfee:coinex:XMR", c.key("wfee", "coinex", "XMR"))

	c = &Client{}
	assert.Equal(t, "wfee:btse", c.key("wfee", "btse"))
}
