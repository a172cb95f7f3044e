package domain

import (
	"sort"
	"time"
)

const (
	KYCStatePending   KYCState = "pending"
	KYCStateCompleted KYCState = "completed"
	KYCStateRejected  KYCState = "rejected"
	KYCStateFailed    KYCState = "failed"
	KYCStateExpired   KYCState = "expired"
)

type KYCState string

// KYC is an identity verification case.
type KYC struct {
	ID        string
	State     KYCState
	CreatedAt time.Time
}

func (k KYC) IsPending() bool {
	return k.State == KYCStatePending
}

func (k KYC) IsCompleted() bool {
	return k.State == KYCStateCompleted
}

// SortKYCs returns a copy of the list ordered newest first.
func SortKYCs(kycs []KYC) []KYC {
	sorted := make([]KYC, len(kycs))
	copy(sorted, kycs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
