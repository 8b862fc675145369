package httptransport

import "expvar"

var (
	metricListQueryTotal  = expvar.NewInt("list_query_total")
	metricListQueryErrors = expvar.NewInt("list_query_errors_total")

	metricTokenQueryTotal  = expvar.NewInt("token_query_total")
	metricTokenQueryErrors = expvar.NewInt("token_query_errors_total")
)
