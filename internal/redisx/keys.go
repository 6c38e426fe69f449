package redisx

import "time"

const (
	// Best-effort checkout dedup: idem:checkout:{customer_id}:{key} -> first order number
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Cached order status: order_status:{order_id} -> status string
	KeyOrderStatus = "order_status:%s"

	// Cached booking status: booking_status:{domain}:{booking_id} -> status string
	KeyBookingStatus = "booking_status:%s:%s"

	// Consumer dedup: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
