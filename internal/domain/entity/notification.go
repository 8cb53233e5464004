package entity

// NotificationKind identifies the provider a request is addressed to.
// Only the kinds declared below are dispatchable; any other value decoded from
// a request is kept verbatim so it can be reported back as unsupported.
type NotificationKind string

const (
	// NotificationDiscord delivers through a Discord-style chat webhook.
	NotificationDiscord NotificationKind = "discord"

	// NotificationTelegram delivers through a Telegram-style bot API.
	NotificationTelegram NotificationKind = "telegram"
)

// Supported reports whether the kind has a provider behind it.
func (k NotificationKind) Supported() bool {
	switch k {
	case NotificationDiscord, NotificationTelegram:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (k NotificationKind) String() string {
	return string(k)
}

// Names of the encrypted request fields, as they appear on the wire.
const (
	FieldEncryptedWebhook = "encrypted_webhook"
	FieldEncryptedToken   = "encrypted_token"
	FieldEncryptedChatID  = "encrypted_chat_id"
)

// NotificationMessage is the streak event forwarded to a provider.
// It is created once per request and never mutated afterwards.
type NotificationMessage struct {
	Username           string
	CurrentStreak      int
	ContributionsToday *int
	Message            string
}

// NotificationRequest is one inbound dispatch request.
//
// Encrypted fields hold base64 text produced by the external encryptor.
// An empty string is treated the same as an absent field.
type NotificationRequest struct {
	Type             NotificationKind
	EncryptedWebhook string
	EncryptedToken   string
	EncryptedChatID  string
	Message          NotificationMessage
}

// EncryptedField returns the value of the named encrypted field and whether it is set.
func (r *NotificationRequest) EncryptedField(name string) (string, bool) {
	var v string
	switch name {
	case FieldEncryptedWebhook:
		v = r.EncryptedWebhook
	case FieldEncryptedToken:
		v = r.EncryptedToken
	case FieldEncryptedChatID:
		v = r.EncryptedChatID
	}
	return v, v != ""
}

// DispatchResult is the outcome reported back to the caller.
// It never carries plaintext secrets, key material or ciphertext.
type DispatchResult struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`

	// Err keeps the typed failure for logging and tests; it is not serialized.
	Err error `json:"-"`
}

// Succeeded returns a successful result.
func Succeeded() DispatchResult {
	return DispatchResult{Success: true}
}

// Failed converts err into a failure result.
func Failed(err error) DispatchResult {
	msg := err.Error()
	return DispatchResult{Success: false, Error: &msg, Err: err}
}
