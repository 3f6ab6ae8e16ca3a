// Package models supplies ready-made motion and sensor models for the
// particle filter: a sampled odometry motion model in the standard
// rot1-trans-rot2 decomposition and a range-to-beacon sensor model
// with Gaussian range noise. Both plug into pf.Filter through the
// MotionModel and SensorModel interfaces.
package models
