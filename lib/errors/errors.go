package errors

// Rejections of the control surface and the consensus core are in 100-149;
// storage, network and configuration errors follow.
var (
	NodeIsKilled           = NewError(100, "node is killed")
	NodeIsFaulty           = NewError(101, "node is faulty")
	NodesAreNotReady       = NewError(102, "nodes are not ready")
	NodeAlreadyStarted     = NewError(103, "node is already started")
	NodeNotStarted         = NewError(104, "node is not started")
	MessageMalformed       = NewError(105, "malformed message")
	MessageUnknownType     = NewError(106, "unsupported message content type")
	InvalidValue           = NewError(107, "value must be 0 or 1")
	InvalidThreshold       = NewError(108, "invalid threshold; N must be positive and F must be in [0, N)")
	InvalidNodeID          = NewError(109, "invalid node id")
	BadRequestParameter    = NewError(110, "bad request parameter")
	InvalidInitialValues   = NewError(111, "initial values must be given for every node")
	InvalidFaultyNodes     = NewError(112, "faulty node list is invalid")
	NetworkAlreadyStarted  = NewError(113, "network is already started")
	ConsensusTimeout       = NewError(114, "timeout while waiting for decision")
	StorageRecordNotFound  = NewError(150, "record does not exist in storage")
	StorageRecordExists    = NewError(151, "record already exists in storage")
	StorageCoreError       = NewError(152, "storage error")
	StorageInvalidConfig   = NewError(153, "invalid storage configuration")
	EndpointNotFound       = NewError(160, "endpoint not found")
	NotMatchHTTPRouter     = NewError(161, "router name not found")
	HTTPServerNotListening = NewError(162, "http server is not listening")
	PeerUnavailable        = NewError(163, "peer is unavailable")
	StreamNotSupported     = NewError(164, "chunked response is not supported")
	InvalidRateLimitRule   = NewError(170, "invalid rate limit rule")
	InvalidLogLevel        = NewError(171, "invalid log level")
)
