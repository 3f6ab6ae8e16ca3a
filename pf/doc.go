// Package pf implements an adaptive (KLD-sampling) particle filter for
// planar robot localization.
//
// A Filter owns two fixed-capacity sample sets and flips between them:
// reads and in-place updates go to the active set, resampling drains the
// active set into the inactive one and then flips. Each set carries a
// pose histogram (see the Histogram interface) whose occupied-bin count
// drives the KLD population bound, plus per-cluster statistics refreshed
// after every resample.
//
// The filter is deliberately single-threaded. Nothing in this package
// locks; callers that share a Filter across goroutines must serialize
// access themselves. All randomness flows through a PRNG owned by the
// Filter and seeded at construction, so runs are reproducible given a
// fixed Config.Seed.
//
// Motion models, sensor models and map access are supplied by the
// caller through small interfaces (MotionModel, SensorModel, Map), with
// func adapters for one-off closures. The models package provides
// ready-made odometry and range-beacon implementations; the kdtree
// package provides the canonical Histogram.
package pf
