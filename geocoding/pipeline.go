// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"time"
)

// DefaultDelay is the pause between two jobs, keeping the public Nominatim
// instance under its one request per second policy on average.
const DefaultDelay = 500 * time.Millisecond

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Job is one pair of addresses to geocode.
type Job struct {
	Key         string
	Origin      string
	Destination string
}

// PairResult is the outcome of a Job. Either point may be nil.
type PairResult struct {
	Index       int
	Job         Job
	Origin      *GeocodedPoint
	Destination *GeocodedPoint
}

// Complete reports whether both ends were found.
func (r PairResult) Complete() bool {
	return r.Origin != nil && r.Destination != nil
}

// Pipeline geocodes jobs one at a time, origin first, waiting Delay between
// jobs.
type Pipeline struct {
	Client *Client
	Delay  time.Duration
	Sleep  SleepFunc
}

// NewPipeline returns a pipeline with the default delay and sleep.
func NewPipeline(c *Client) *Pipeline {
	return &Pipeline{Client: c, Delay: DefaultDelay, Sleep: Sleep}
}

// Run processes jobs in order and hands each result to consume before
// moving on. A failed lookup never stops the batch; only ctx does, in which
// case its error is returned and no further results are delivered.
func (p *Pipeline) Run(ctx context.Context, jobs []Job, consume func(PairResult)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for i, job := range jobs {
		if i > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return err
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		origin := p.Client.Lookup(ctx, job.Origin)

		if err := ctx.Err(); err != nil {
			return err
		}

		destination := p.Client.Lookup(ctx, job.Destination)

		if err := ctx.Err(); err != nil {
			return err
		}

		consume(PairResult{Index: i, Job: job, Origin: origin, Destination: destination})
	}

	return nil
}
