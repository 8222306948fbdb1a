package report

import "fmt"

// Level is the maturity level derived from the action buckets.
type Level int

// LevelBlocked means bucket 0 is non-empty and the service cannot be evaluated.
const LevelBlocked Level = -1

// LevelCompliant is the level of a service with no scored failures.
const LevelCompliant Level = NumBuckets - 1

func (l Level) String() string {
	if l == LevelBlocked {
		return "blocked"
	}
	return fmt.Sprintf("%d", int(l))
}

// Actions holds remediation items by severity bucket. Other items are shown
// but never affect the level.
type Actions struct {
	Buckets [NumBuckets][]string `yaml:"buckets"`
	Other   []string             `yaml:"other,omitempty"`
}

func (a *Actions) add(bucket int, item string) {
	if bucket < 0 || bucket >= NumBuckets {
		bucket = NumBuckets - 1
	}
	a.Buckets[bucket] = append(a.Buckets[bucket], item)
}

// Level returns LevelBlocked when bucket 0 has items, otherwise k-1 for the
// first non-empty bucket k, otherwise LevelCompliant.
func (a Actions) Level() Level {
	if len(a.Buckets[0]) > 0 {
		return LevelBlocked
	}
	for k := 1; k < NumBuckets; k++ {
		if len(a.Buckets[k]) > 0 {
			return Level(k - 1)
		}
	}
	return LevelCompliant
}

// Next returns the items of the bucket that decides the level. Items of less
// severe buckets are not included.
func (a Actions) Next() []string {
	for k := 0; k < NumBuckets; k++ {
		if len(a.Buckets[k]) > 0 {
			return a.Buckets[k]
		}
	}
	return nil
}

// Len returns the number of items over all buckets and Other.
func (a Actions) Len() int {
	n := len(a.Other)
	for _, b := range a.Buckets {
		n += len(b)
	}
	return n
}
