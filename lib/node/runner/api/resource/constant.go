package resource

const (
	APIPrefix = "/api"

	URLState  = APIPrefix + "/state"
	URLStatus = APIPrefix + "/status"
	URLEvents = APIPrefix + "/events"
	URLRounds = APIPrefix + "/rounds"
	URLRound  = APIPrefix + "/rounds/{round}"
)
