package dynamo

// DynamoDB attribute names used in key and condition expressions.
const (
	attrUserID    = "user_id"
	attrUsername  = "username"
	attrEmail     = "email"
	attrUpdatedAt = "updated_at"
	attrOtpID     = "otp_id"
	attrCode      = "code"
	attrPurpose   = "purpose"
	attrOtpStatus = "otp_status"
	attrExpiresAt = "expires_at"

	indexUsername = "username-index"
	indexEmail    = "email-index"
	indexOtpEmail = "email-otp_id-index"
)
