package payment

import "fmt"

const paymentSuccessKeyPrefix = "stripe.payment_success_"

// SuccessMessage is shown to the user once their payment is confirmed.
const SuccessMessage = "Payment successful! Your booking has been confirmed."

// NoticeStore keeps one pending success message per user in the settings
// store. The webhook path writes it; the user's next success-page visit
// consumes it.
type NoticeStore struct {
	kv KV
}

func NewNoticeStore(kv KV) *NoticeStore {
	return &NoticeStore{kv: kv}
}

// StorePaymentSuccess records message for userID, replacing any previous one.
func (n *NoticeStore) StorePaymentSuccess(userID uint, message string) error {
	return n.kv.Set(noticeKey(userID), message)
}

// ConsumePaymentSuccess returns the pending message for userID and clears
// it. Returns "" when there is none.
func (n *NoticeStore) ConsumePaymentSuccess(userID uint) (string, error) {
	msg, err := n.kv.Get(noticeKey(userID), "")
	if err != nil || msg == "" {
		return "", err
	}
	if err := n.kv.Delete(noticeKey(userID)); err != nil {
		return "", err
	}
	return msg, nil
}

func noticeKey(userID uint) string {
	return fmt.Sprintf("%s%d", paymentSuccessKeyPrefix, userID)
}
