package coord

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/downfa11-org/go-bookie/util"
)

// Client is the bookie's handle on the coordination service. Background
// maintenance (garbage collection) is gated on a live session; a bookie that
// never registered must not delete anything.
type Client struct {
	instanceID string
	ready      atomic.Bool
}

func NewClient() *Client {
	return &Client{instanceID: uuid.NewString()}
}

// InstanceID identifies this bookie process to the coordination service.
func (c *Client) InstanceID() string {
	return c.instanceID
}

// Register establishes the session and unblocks background maintenance.
func (c *Client) Register() {
	c.ready.Store(true)
	util.Info("bookie %s registered with coordination service", c.instanceID)
}

func (c *Client) Ready() bool {
	return c.ready.Load()
}
