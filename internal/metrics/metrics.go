package metrics

import "expvar"

var (
	OrderSubmits    = expvar.NewInt("order_submits")
	StatusUpdates   = expvar.NewInt("status_updates")
	OrderBroadcasts = expvar.NewInt("order_broadcasts")
	RelayedFrames   = expvar.NewInt("relayed_frames")
	DecodeFailures  = expvar.NewInt("decode_failures")
	StoreErrors     = expvar.NewInt("store_errors")
)
