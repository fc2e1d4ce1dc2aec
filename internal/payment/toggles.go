package payment

import "strconv"

// Settings keys for the payment feature toggles.
const (
	SettingUseWebhook      = "service.payment.stripe.use_webhook"
	SettingUseSessionCheck = "service.payment.stripe.use_session_check"
	SettingIncludeFees     = "service.payment.stripe.include_fees"
)

// Toggles holds the confirmation-channel configuration for one request.
// Handlers resolve it once and pass it in, so a toggle flipped mid-operation
// cannot change an in-flight decision.
type Toggles struct {
	SessionCheck bool
	Webhook      bool
}

// Normalized applies the default-safe fallback: with both channels disabled
// the session check is treated as enabled, otherwise nothing would ever
// confirm a payment.
func (t Toggles) Normalized() Toggles {
	if !t.SessionCheck && !t.Webhook {
		t.SessionCheck = true
	}
	return t
}

// ResolveToggles reads both toggles from the settings store. Both default to
// enabled; read errors fall back to the default rather than blocking payment
// handling.
func ResolveToggles(kv KV) Toggles {
	return Toggles{
		SessionCheck: boolSetting(kv, SettingUseSessionCheck, true),
		Webhook:      boolSetting(kv, SettingUseWebhook, true),
	}
}

func boolSetting(kv KV, key string, fallback bool) bool {
	raw, err := kv.Get(key, strconv.FormatBool(fallback))
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
