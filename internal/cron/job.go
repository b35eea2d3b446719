// Package cron runs periodic maintenance jobs under a cluster-wide lock.
package cron

import "context"

// Job is one maintenance task executed on every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}
