package classifier

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger-backend/internal/adapters/mailbox"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

func zelleMessage(amount string) *mailbox.Message {
	return &mailbox.Message{
		ID:        "msg-zelle",
		Sender:    "Chase <no.reply@alerts.chase.com>",
		Subject:   "Gandalf sent you $" + amount,
		Body:      "Gandalf sent you $" + amount + " with Zelle.",
		Timestamp: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func venmoMessage(amount string) *mailbox.Message {
	return &mailbox.Message{
		ID:        "msg-venmo",
		Sender:    "Venmo <venmo@venmo.com>",
		Subject:   "Gandalf paid you $" + amount,
		Body:      "Gandalf paid you $" + amount,
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func testConfig(types ...tenant.PaymentType) *tenant.Config {
	return &tenant.Config{
		EnabledPaymentTypes: types,
		SearchIdentifier:    "Gandalf",
		Rent:                &tenant.RentRule{DueDay: 1, MonthlyAmount: decimal.NewFromInt(873)},
		LedgerName:          "Gandalf Ledger",
	}
}

func TestClassify_ZelleMatch(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	event := c.Classify(zelleMessage("100.00"), testConfig("zelle", "venmo"))
	require.NotNil(t, event)
	assert.True(t, event.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, tenant.PaymentType("zelle"), event.PaymentType)
	assert.Equal(t, "msg-zelle", event.SourceMessageID)
}

func TestClassify_AmountFollowedBySentencePeriod(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	msg := &mailbox.Message{
		ID:      "msg-period",
		Sender:  "Zelle <alerts@zellepay.com>",
		Subject: "You received money",
		Body:    "Gandalf sent you $100.00. The money is in your account.",
	}

	event := c.Classify(msg, testConfig("zelle"))
	require.NotNil(t, event)
	assert.Equal(t, "100.00", event.Amount.StringFixed(2))
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	// A message that both matchers would extract from. First enabled
	// type in the tenant's order wins; the other is never consulted.
	msg := &mailbox.Message{
		ID:      "msg-both",
		Sender:  "payments@venmo.com via zellepay.com",
		Subject: "Gandalf sent you $50.00",
		Body:    "Gandalf paid you $50.00",
	}

	event := c.Classify(msg, testConfig("venmo", "zelle"))
	require.NotNil(t, event)
	assert.Equal(t, tenant.PaymentType("venmo"), event.PaymentType)

	event = c.Classify(msg, testConfig("zelle", "venmo"))
	require.NotNil(t, event)
	assert.Equal(t, tenant.PaymentType("zelle"), event.PaymentType)
}

func TestClassify_WrongSenderDomain(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	msg := zelleMessage("100.00")
	msg.Sender = "phisher@evil.example.com"
	assert.Nil(t, c.Classify(msg, testConfig("zelle")))
}

func TestClassify_WrongIdentifier(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	msg := &mailbox.Message{
		ID:      "msg-other",
		Sender:  "venmo@venmo.com",
		Subject: "Saruman paid you $100.00",
		Body:    "Saruman paid you $100.00",
	}
	assert.Nil(t, c.Classify(msg, testConfig("venmo")))
}

func TestClassify_MalformedAmountIsNoMatch(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	msg := venmoMessage("..,")
	assert.Nil(t, c.Classify(msg, testConfig("venmo")))
}

func TestClassify_ThousandsSeparators(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	event := c.Classify(venmoMessage("2,500.00"), testConfig("venmo"))
	require.NotNil(t, event)
	assert.True(t, event.Amount.Equal(decimal.NewFromInt(2500)))
}

func TestClassify_DisabledTypeIgnored(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	// Venmo message, but tenant only enables zelle
	assert.Nil(t, c.Classify(venmoMessage("80.00"), testConfig("zelle")))
}

func TestClassify_PayPal(t *testing.T) {
	c := NewClassifier(DefaultRegistry(nil))

	msg := &mailbox.Message{
		ID:      "msg-pp",
		Sender:  "service@paypal.com",
		Subject: "You've got money",
		Body:    "Gandalf sent you $75.25 USD",
	}
	event := c.Classify(msg, testConfig("paypal"))
	require.NotNil(t, event)
	assert.True(t, event.Amount.Equal(decimal.NewFromFloat(75.25)))
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&ZelleMatcher{}))
	assert.Error(t, r.Register(&ZelleMatcher{}))
}
