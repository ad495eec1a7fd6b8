// internal/service/listening/scoring.go

package listening

import (
	"math"
	"strconv"
)

// Score weights. Velocity dominates both scores; the engagement rates are
// scaled up so a few percent moves the score by whole points.
const (
	trafficVelocityWeight = 0.65
	trafficLikeWeight     = 0.25
	trafficCommentWeight  = 0.10

	replicationRatioWeight    = 0.55
	replicationVelocityWeight = 0.35
	replicationLikeWeight     = 0.10

	finalTrafficWeight     = 0.55
	finalReplicationWeight = 0.45

	likeRateScale    = 100
	commentRateScale = 1000
)

// TrafficScore rates how fast a video is pulling views and engagement
func TrafficScore(viewsPerHour, likeRate, commentRate float64) float64 {
	return trafficVelocityWeight*math.Log10(1+nonNegative(viewsPerHour)) +
		trafficLikeWeight*(nonNegative(likeRate)*likeRateScale) +
		trafficCommentWeight*(nonNegative(commentRate)*commentRateScale)
}

// ReplicationScore rates how far a video reached beyond its channel's own audience
func ReplicationScore(viewSubRatio, viewsPerHour, likeRate float64) float64 {
	return replicationRatioWeight*math.Log10(1+nonNegative(viewSubRatio)) +
		replicationVelocityWeight*math.Log10(1+nonNegative(viewsPerHour)) +
		replicationLikeWeight*(nonNegative(likeRate)*likeRateScale)
}

// FinalScore blends the unrounded traffic and replication scores
func FinalScore(traffic, replication float64) float64 {
	return finalTrafficWeight*traffic + finalReplicationWeight*replication
}

func nonNegative(v float64) float64 {
	return math.Max(v, 0)
}

// round2 rounds the exact stored value to two decimals, ties to even
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}
