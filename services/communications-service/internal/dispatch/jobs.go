package dispatch

// Queues the bridge fills and the workers drain.
const (
	EmailQueue = "email_jobs"
	SMSQueue   = "sms_jobs"
)

// Job types.
const (
	JobReceiptEmail = "receipt_email"
	JobSupportEmail = "support_email"
	JobSMSAlert     = "sms_alert"
)

type EmailJob struct {
	Type           string `json:"type"`
	To             string `json:"to"`
	ReplyTo        string `json:"replyTo,omitempty"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

type SMSJob struct {
	Type           string `json:"type"`
	To             string `json:"to"`
	Text           string `json:"text"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}
