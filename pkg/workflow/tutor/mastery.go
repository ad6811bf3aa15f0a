package tutor

import (
	"sort"
	"time"

	"ai-coursebuilder-be/pkg/workflow/state"
)

const (
	// DefaultSmoothing is the exponential weight given to the newest
	// attempt when updating a mastery score.
	DefaultSmoothing = 0.3

	// DefaultReviewInterval marks a topic due for review once its last
	// update is older than this, regardless of score.
	DefaultReviewInterval = 7 * 24 * time.Hour

	// weakThreshold separates weak topics from mastered ones.
	weakThreshold = 0.6
)

// UpdateMastery folds one graded attempt into a topic's record. The
// score moves toward 1.0 on a correct answer and toward 0.0 on an
// incorrect one, stays in [0,1], and the streak resets on any miss.
func UpdateMastery(rec state.MasteryRecord, correct bool, smoothing float64) state.MasteryRecord {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = DefaultSmoothing
	}
	target := 0.0
	if correct {
		target = 1.0
	}
	rec.Score = (1-smoothing)*rec.Score + smoothing*target
	if rec.Score < 0 {
		rec.Score = 0
	}
	if rec.Score > 1 {
		rec.Score = 1
	}
	if correct {
		rec.Streak++
	} else {
		rec.Streak = 0
	}
	rec.Attempts++
	rec.LastUpdated = time.Now()
	return rec
}

// DueForReview lists topics whose last update is older than the
// interval. Never-attempted topics are not due, they are new.
func DueForReview(mastery map[string]state.MasteryRecord, interval time.Duration, now time.Time) []string {
	if interval <= 0 {
		interval = DefaultReviewInterval
	}
	var due []string
	for topic, rec := range mastery {
		if rec.Attempts == 0 {
			continue
		}
		if now.Sub(rec.LastUpdated) > interval {
			due = append(due, topic)
		}
	}
	sort.Strings(due)
	return due
}

// WeakTopics lists attempted topics below the mastery threshold,
// weakest first.
func WeakTopics(mastery map[string]state.MasteryRecord) []string {
	type scored struct {
		topic string
		score float64
	}
	var weak []scored
	for topic, rec := range mastery {
		if rec.Attempts > 0 && rec.Score < weakThreshold {
			weak = append(weak, scored{topic, rec.Score})
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].score != weak[j].score {
			return weak[i].score < weak[j].score
		}
		return weak[i].topic < weak[j].topic
	})
	topics := make([]string, len(weak))
	for i, w := range weak {
		topics[i] = w.topic
	}
	return topics
}
