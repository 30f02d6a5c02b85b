package otp

import (
	"time"
)

// Record is one issued OTP. The plaintext code is never stored, only its
// SHA-256 digest. A record is terminal once Used is set or it is deleted.
type Record struct {
	ID           uint       `json:"id" gorm:"primarykey"`
	CreatedAt    time.Time  `json:"created_at"`
	Email        string     `json:"email" gorm:"index;not null"`
	CodeHash     string     `json:"-" gorm:"not null"`
	Kind         string     `json:"kind" gorm:"index;not null"`
	ExpiresAt    time.Time  `json:"expires_at" gorm:"not null"`
	Used         bool       `json:"used" gorm:"default:false"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	AttemptCount int        `json:"attempt_count" gorm:"default:0"`
	RequestIP    string     `json:"request_ip,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
}

func (Record) TableName() string {
	return "email_verification"
}

// VerificationResult is the outcome of a verify attempt. Invalid outcomes
// are values, not errors; only infrastructure failures surface as errors.
type VerificationResult struct {
	Valid  bool
	Reason string
}

func ValidResult() VerificationResult {
	return VerificationResult{Valid: true}
}

func InvalidResult(reason string) VerificationResult {
	return VerificationResult{Valid: false, Reason: reason}
}
