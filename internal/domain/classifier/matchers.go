package classifier

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger-backend/internal/adapters/mailbox"
	"github.com/rentledger/rentledger-backend/internal/domain/money"
	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
)

// senderHasDomain is the cheap out-of-domain rejection every matcher
// runs before attempting extraction.
func senderHasDomain(sender string, domains ...string) bool {
	lower := strings.ToLower(sender)
	for _, d := range domains {
		if strings.Contains(lower, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// mentionsIdentifier checks that the message is about this tenant.
func mentionsIdentifier(msg *mailbox.Message, searchID string) bool {
	needle := strings.ToLower(searchID)
	return strings.Contains(strings.ToLower(msg.Sender), needle) ||
		strings.Contains(strings.ToLower(msg.Subject), needle) ||
		strings.Contains(strings.ToLower(msg.Body), needle)
}

// extractAmount applies the pattern to subject then body and parses the
// first capture group. Malformed numeric text is a no-match.
func extractAmount(msg *mailbox.Message, pattern *regexp.Regexp) (decimal.Decimal, bool) {
	for _, text := range []string{msg.Subject, msg.Body} {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := money.Parse(m[1])
		if err != nil {
			continue
		}
		return amount, true
	}
	return decimal.Zero, false
}

// The amount capture must begin and end on a digit so that sentence
// punctuation right after the number ("$100.00.") is not swallowed into
// the capture and misread as a thousands separator.
var (
	zelleAmountRe  = regexp.MustCompile(`(?i)sent you \$?(\d[\d.,]*\d|\d)`)
	venmoAmountRe  = regexp.MustCompile(`(?i)paid you \$?(\d[\d.,]*\d|\d)`)
	paypalAmountRe = regexp.MustCompile(`(?i)sent you \$?(\d[\d.,]*\d|\d)\s*USD`)
)

// ZelleMatcher recognizes Zelle payment notifications forwarded by banks.
type ZelleMatcher struct{}

func (ZelleMatcher) Type() tenant.PaymentType { return "zelle" }

func (ZelleMatcher) Match(msg *mailbox.Message, searchID string) (decimal.Decimal, bool) {
	if !senderHasDomain(msg.Sender, "zellepay.com", "alerts.chase.com", "ealerts.bankofamerica.com", "wellsfargo.com") {
		return decimal.Zero, false
	}
	if !mentionsIdentifier(msg, searchID) {
		return decimal.Zero, false
	}
	return extractAmount(msg, zelleAmountRe)
}

// VenmoMatcher recognizes Venmo payment notifications.
type VenmoMatcher struct{}

func (VenmoMatcher) Type() tenant.PaymentType { return "venmo" }

func (VenmoMatcher) Match(msg *mailbox.Message, searchID string) (decimal.Decimal, bool) {
	if !senderHasDomain(msg.Sender, "venmo.com") {
		return decimal.Zero, false
	}
	if !mentionsIdentifier(msg, searchID) {
		return decimal.Zero, false
	}
	return extractAmount(msg, venmoAmountRe)
}

// PayPalMatcher recognizes PayPal "you've got money" notifications.
type PayPalMatcher struct{}

func (PayPalMatcher) Type() tenant.PaymentType { return "paypal" }

func (PayPalMatcher) Match(msg *mailbox.Message, searchID string) (decimal.Decimal, bool) {
	if !senderHasDomain(msg.Sender, "paypal.com") {
		return decimal.Zero, false
	}
	if !mentionsIdentifier(msg, searchID) {
		return decimal.Zero, false
	}
	return extractAmount(msg, paypalAmountRe)
}
