package metrics

var (
	Consensus = NopConsensusMetrics()
	Transport = NopTransportMetrics()
	API       = NopAPIMetrics()
)
