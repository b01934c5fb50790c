package domain

import "time"

// OtpStatus moves only from OtpUnused to OtpUsed.
type OtpStatus int

const (
	OtpUnused OtpStatus = 0
	OtpUsed   OtpStatus = 1
)

// OtpPurpose names the flow a code was issued for. A code only redeems in the
// flow that issued it.
type OtpPurpose string

const (
	PurposeVerification OtpPurpose = "verification"
	PurposeRecovery     OtpPurpose = "recovery"
)

// OtpRecord is one issued code. Records are append-only: a new send never
// invalidates older records for the same email.
// ExpiresAt is stored as Unix seconds and doubles as the DynamoDB TTL attribute.
type OtpRecord struct {
	OtpID     string     `json:"id" dynamodbav:"otp_id"` // monotonic ULID, newest sorts last
	Code      string     `json:"code" dynamodbav:"code"`
	Email     string     `json:"email" dynamodbav:"email"`
	Purpose   OtpPurpose `json:"purpose" dynamodbav:"purpose"`
	Status    OtpStatus  `json:"status" dynamodbav:"otp_status"`
	ExpiresAt time.Time  `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
}

// Expired reports whether the record is no longer redeemable at now.
func (o *OtpRecord) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

// OtpFilter selects records by owning email, purpose and code. A nil Status
// matches any status.
type OtpFilter struct {
	Email   string
	Purpose OtpPurpose
	Code    string
	Status  *OtpStatus
}

// WithStatus returns a copy of f restricted to status.
func (f OtpFilter) WithStatus(status OtpStatus) OtpFilter {
	f.Status = &status
	return f
}
