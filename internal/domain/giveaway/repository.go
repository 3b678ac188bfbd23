package giveaway

import "context"

// Reader is the read-only view of live giveaways used by the status API.
type Reader interface {
	Get(ctx context.Context, id string) (*Giveaway, error)
	List(ctx context.Context) []Giveaway
}
