package payment

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookConf(eventID string, s *CheckoutSession) Confirmation {
	return ConfirmationFromSession(ChannelWebhook, eventID, s)
}

func TestWebhookIgnoresUnpaidSession(t *testing.T) {
	r := newRig(t)
	sess := paidSession("cs_1", "pi_1")
	sess.PaymentStatus = "unpaid"

	outcome, err := r.rec.ConfirmFromWebhook(webhookConf("evt_1", sess))
	require.NoError(t, err)
	assert.Equal(t, WebhookIgnored, outcome)
	assert.Zero(t, r.store.paidCount())

	processed, err := r.ledger.IsProcessed("evt_1")
	require.NoError(t, err)
	assert.False(t, processed, "ignored deliveries must not consume ledger capacity")
}

func TestWebhookMaterializesBooking(t *testing.T) {
	r := newRig(t)

	outcome, err := r.rec.ConfirmFromWebhook(webhookConf("evt_1", paidSession("cs_1", "pi_1")))
	require.NoError(t, err)
	assert.Equal(t, WebhookMaterialized, outcome)
	assert.Equal(t, 1, r.store.paidCount())

	processed, err := r.ledger.IsProcessed("evt_1")
	require.NoError(t, err)
	assert.True(t, processed)

	// Success notice parked for the user's next success-page visit.
	msg, err := NewNoticeStore(r.kv).ConsumePaymentSuccess(r.user.ID)
	require.NoError(t, err)
	assert.Equal(t, SuccessMessage, msg)

	assert.Equal(t, []string{r.user.Email}, r.mailer.sent)
}

func TestWebhookReplayIsDuplicate(t *testing.T) {
	r := newRig(t)

	_, err := r.rec.ConfirmFromWebhook(webhookConf("evt_1", paidSession("cs_1", "pi_1")))
	require.NoError(t, err)

	outcome, err := r.rec.ConfirmFromWebhook(webhookConf("evt_1", paidSession("cs_1", "pi_1")))
	require.NoError(t, err)
	assert.Equal(t, WebhookDuplicate, outcome)
	assert.Equal(t, 1, r.store.paidCount())
	assert.Equal(t, 1, len(r.mailer.sent), "a replay must not resend mail")
}

func TestWebhookAfterSessionCheckIsDuplicate(t *testing.T) {
	r := newRig(t)
	r.provider.sessions["cs_2"] = paidSession("cs_2", "pi_2")

	status, err := r.rec.ConfirmFromSessionCheck("cs_2", Toggles{SessionCheck: true, Webhook: true})
	require.NoError(t, err)
	assert.Equal(t, SessionCheckConfirmed, status)

	// The late webhook for the same session carries a fresh event id, so
	// only the oracle can catch it.
	outcome, err := r.rec.ConfirmFromWebhook(webhookConf("evt_2", paidSession("cs_2", "pi_2")))
	require.NoError(t, err)
	assert.Equal(t, WebhookDuplicate, outcome)
	assert.Equal(t, 1, r.store.paidCount())

	// The duplicate delivery still lands in the ledger.
	processed, err := r.ledger.IsProcessed("evt_2")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestWebhookFailureLeavesLedgerUnmarked(t *testing.T) {
	r := newRig(t)
	r.store.createErr = errors.New("connection reset")

	_, err := r.rec.ConfirmFromWebhook(webhookConf("evt_1", paidSession("cs_1", "pi_1")))
	require.Error(t, err)

	processed, err := r.ledger.IsProcessed("evt_1")
	require.NoError(t, err)
	assert.False(t, processed, "a failed materialization must stay retryable")

	// The provider redelivers; this time the store is healthy.
	r.store.createErr = nil
	outcome, err := r.rec.ConfirmFromWebhook(webhookConf("evt_1", paidSession("cs_1", "pi_1")))
	require.NoError(t, err)
	assert.Equal(t, WebhookMaterialized, outcome)
	assert.Equal(t, 1, r.store.paidCount())
}

func TestSessionCheckConfirmsPaidSession(t *testing.T) {
	r := newRig(t)
	r.provider.sessions["cs_1"] = paidSession("cs_1", "pi_1")

	status, err := r.rec.ConfirmFromSessionCheck("cs_1", Toggles{SessionCheck: true})
	require.NoError(t, err)
	assert.Equal(t, SessionCheckConfirmed, status)
	assert.Equal(t, 1, r.store.paidCount())
}

func TestSessionCheckReportsExistingBooking(t *testing.T) {
	r := newRig(t)
	r.provider.sessions["cs_1"] = paidSession("cs_1", "pi_1")

	_, err := r.rec.ConfirmFromWebhook(webhookConf("evt_1", paidSession("cs_1", "pi_1")))
	require.NoError(t, err)

	status, err := r.rec.ConfirmFromSessionCheck("cs_1", Toggles{SessionCheck: true, Webhook: true})
	require.NoError(t, err)
	assert.Equal(t, SessionCheckAlreadyConfirmed, status)
	assert.Equal(t, 1, r.store.paidCount())
}

func TestSessionCheckWebhookOnlySkipsProvider(t *testing.T) {
	r := newRig(t)

	status, err := r.rec.ConfirmFromSessionCheck("cs_1", Toggles{Webhook: true})
	require.NoError(t, err)
	assert.Equal(t, SessionCheckPending, status)
	assert.Zero(t, r.provider.callCount(), "webhook-only mode must not poll the provider")
	assert.Zero(t, r.store.paidCount())
}

func TestSessionCheckHybridDefersUnpaidToWebhook(t *testing.T) {
	r := newRig(t)
	sess := paidSession("cs_1", "pi_1")
	sess.PaymentStatus = "unpaid"
	r.provider.sessions["cs_1"] = sess

	status, err := r.rec.ConfirmFromSessionCheck("cs_1", Toggles{SessionCheck: true, Webhook: true})
	require.NoError(t, err)
	assert.Equal(t, SessionCheckPending, status)
	assert.Zero(t, r.store.paidCount())
}

func TestSessionCheckOnlyRejectsUnpaid(t *testing.T) {
	r := newRig(t)
	sess := paidSession("cs_1", "pi_1")
	sess.PaymentStatus = "unpaid"
	r.provider.sessions["cs_1"] = sess

	status, err := r.rec.ConfirmFromSessionCheck("cs_1", Toggles{SessionCheck: true})
	require.NoError(t, err)
	assert.Equal(t, SessionCheckFailed, status)
	assert.Zero(t, r.store.paidCount())
}

func TestSessionCheckProviderErrorSurfaces(t *testing.T) {
	r := newRig(t)
	r.provider.err = errors.New("stripe timeout")

	_, err := r.rec.ConfirmFromSessionCheck("cs_1", Toggles{SessionCheck: true})
	require.Error(t, err)
	assert.Zero(t, r.store.paidCount())
}

func TestConcurrentConfirmationsCreateOneBooking(t *testing.T) {
	r := newRig(t)
	r.provider.sessions["cs_1"] = paidSession("cs_1", "pi_1")
	toggles := Toggles{SessionCheck: true, Webhook: true}

	const webhooks = 8
	const sessionChecks = 4

	var wg sync.WaitGroup
	for i := 0; i < webhooks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Redeliveries reuse the event id, distinct events get their own.
			eventID := fmt.Sprintf("evt_%d", i%2)
			r.rec.ConfirmFromWebhook(webhookConf(eventID, paidSession("cs_1", "pi_1")))
		}(i)
	}
	for i := 0; i < sessionChecks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.rec.ConfirmFromSessionCheck("cs_1", toggles)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, r.store.paidCount(), "racing confirmations for one session must yield exactly one booking")
}
