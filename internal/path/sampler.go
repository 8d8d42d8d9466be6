// Package path converts raw position snapshots into time-windowed,
// downsampled per-round trajectories.
package path

import (
	"sort"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

// Options tunes one Recorder.
type Options struct {
	// MaxSamples bounds each round's buffer; the oldest sample is dropped
	// on overflow. Non-positive means unbounded.
	MaxSamples int
	// SampleHz is the downsampling rate. Zero (or Downsample=false) stores
	// every accepted sample.
	SampleHz int
	// Downsample enables bucketed downsampling.
	Downsample bool
	// Median enables the median representative for buckets with at least
	// three raw samples; otherwise the most recent raw sample is used.
	Median bool
	// Window is the trailing time window in seconds, relative to the
	// newest sample. Non-positive disables trimming.
	Window float64
	// Project, when set, maps game-space coordinates to image-space ones
	// stamped onto every emitted sample.
	Project func(gx, gy float64) (ix, iy float64)
}

// Context carries the economy/side fields attached to emitted samples.
// They are carried forward as-latest, never aggregated.
type Context struct {
	NetWorth         *float64
	LoadoutValue     *float64
	HasObjectiveItem *bool
}

type bucketKey struct {
	round, bucket int
}

type rawSample struct {
	t, gx, gy float64
}

// Recorder accumulates per-round trajectories for one entity and one side
// bucket. It is not safe for concurrent use.
type Recorder struct {
	opts Options

	rounds     map[int][]model.Sample
	order      []int
	buckets    map[bucketKey][]rawSample
	lastBucket map[int]int
}

// NewRecorder returns an empty Recorder.
func NewRecorder(opts Options) *Recorder {
	return &Recorder{
		opts:       opts,
		rounds:     make(map[int][]model.Sample),
		buckets:    make(map[bucketKey][]rawSample),
		lastBucket: make(map[int]int),
	}
}

// StartRound creates the round's buffer and resets its bucketing state.
func (r *Recorder) StartRound(roundID int) {
	if _, ok := r.rounds[roundID]; !ok {
		r.rounds[roundID] = nil
		r.order = append(r.order, roundID)
	}
	delete(r.lastBucket, roundID)
}

// Record accepts one raw snapshot at t seconds since round start.
func (r *Recorder) Record(roundID int, t, gx, gy float64, ctx Context) {
	if _, ok := r.rounds[roundID]; !ok {
		r.StartRound(roundID)
	}
	r.trim(roundID, t)

	if !r.opts.Downsample || r.opts.SampleHz <= 0 {
		r.append(roundID, r.sample(rawSample{t, gx, gy}, ctx))
		return
	}

	bucket := int(t * float64(r.opts.SampleHz))
	key := bucketKey{roundID, bucket}
	r.buckets[key] = append(r.buckets[key], rawSample{t, gx, gy})

	last, seen := r.lastBucket[roundID]
	if !seen {
		r.lastBucket[roundID] = bucket
		return
	}
	if bucket == last {
		return
	}

	// A new bucket began: close the previous one and emit its
	// representative, carrying the latest economy/side fields.
	closed := r.buckets[bucketKey{roundID, last}]
	if len(closed) > 0 {
		r.append(roundID, r.representative(closed, ctx))
	}
	r.lastBucket[roundID] = bucket
	delete(r.buckets, bucketKey{roundID, bucket - 2})
}

// trim drops samples older than the trailing window relative to t.
func (r *Recorder) trim(roundID int, t float64) {
	if r.opts.Window <= 0 {
		return
	}
	buf := r.rounds[roundID]
	start := 0
	for start < len(buf) && t-buf[start].T > r.opts.Window {
		start++
	}
	if start > 0 {
		r.rounds[roundID] = buf[start:]
	}
}

// append adds one emitted sample, enforcing the capacity bound.
func (r *Recorder) append(roundID int, s model.Sample) {
	buf := append(r.rounds[roundID], s)
	if r.opts.MaxSamples > 0 && len(buf) > r.opts.MaxSamples {
		buf = buf[len(buf)-r.opts.MaxSamples:]
	}
	r.rounds[roundID] = buf
}

// representative synthesizes one sample for a closed bucket: the
// coordinate-wise and time-wise median when the bucket holds at least
// three raw samples and the median is enabled, else the most recent raw
// sample.
func (r *Recorder) representative(samples []rawSample, ctx Context) model.Sample {
	if r.opts.Median && len(samples) >= 3 {
		return r.sample(rawSample{
			t:  median(samples, func(s rawSample) float64 { return s.t }),
			gx: median(samples, func(s rawSample) float64 { return s.gx }),
			gy: median(samples, func(s rawSample) float64 { return s.gy }),
		}, ctx)
	}
	return r.sample(samples[len(samples)-1], ctx)
}

func (r *Recorder) sample(raw rawSample, ctx Context) model.Sample {
	s := model.Sample{
		T:                raw.t,
		GX:               raw.gx,
		GY:               raw.gy,
		NetWorth:         ctx.NetWorth,
		LoadoutValue:     ctx.LoadoutValue,
		HasObjectiveItem: ctx.HasObjectiveItem,
	}
	if r.opts.Project != nil {
		ix, iy := r.opts.Project(raw.gx, raw.gy)
		s.IX = &ix
		s.IY = &iy
	}
	return s
}

func median(samples []rawSample, get func(rawSample) float64) float64 {
	vals := make([]float64, len(samples))
	for i, s := range samples {
		vals[i] = get(s)
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// Rounds returns the recorded trajectories in round order. The returned
// slices alias the Recorder's buffers and must not be mutated.
func (r *Recorder) Rounds() map[int][]model.Sample {
	return r.rounds
}

// RoundIDs returns the round ids in the order their rounds started.
func (r *Recorder) RoundIDs() []int {
	return r.order
}
