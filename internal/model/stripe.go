package model

// Local views of the Stripe webhook payloads, decoded from event.Data.Raw.
// Only the fields this service reads are declared.

type CheckoutSession struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"` // payment | subscription
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	PaymentIntent   string `json:"payment_intent"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer_details"`
	AmountTotal int64             `json:"amount_total"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

type Invoice struct {
	ID                  string `json:"id"`
	Customer            string `json:"customer"`
	CustomerEmail       string `json:"customer_email"`
	CustomerName        string `json:"customer_name"`
	AmountPaid          int64  `json:"amount_paid"`
	Currency            string `json:"currency"`
	Subscription        string `json:"subscription"`
	BillingReason       string `json:"billing_reason"` // subscription_create, subscription_cycle, ...
	SubscriptionDetails struct {
		Metadata map[string]string `json:"metadata"`
	} `json:"subscription_details"`
}

type Subscription struct {
	ID               string            `json:"id"`
	Customer         string            `json:"customer"`
	Status           string            `json:"status"` // trialing, active, past_due, canceled, unpaid, ...
	CurrentPeriodEnd int64             `json:"current_period_end"`
	TrialEnd         int64             `json:"trial_end"`
	Metadata         map[string]string `json:"metadata"`
}

type Charge struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	AmountRefunded int64  `json:"amount_refunded"`
	Refunded       bool   `json:"refunded"`
}
