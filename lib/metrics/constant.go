package metrics

const (
	Namespace          = "benor"
	ConsensusSubsystem = "consensus"
	TransportSubsystem = "transport"
	APISubsystem       = "api"
)

const (
	TransportStatusSent   = "sent"
	TransportStatusFailed = "failed"
)
