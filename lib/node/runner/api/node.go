package api

import (
	"net/http"

	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/network/httputils"
	"boscoin.io/benor/lib/node/runner/api/resource"
)

// StatusHandler answers 500 for a faulty node, which never takes part.
func (api NetworkHandlerAPI) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if api.consensus.IsFaulty() {
		httputils.WriteText(w, http.StatusInternalServerError, network.ResponseFaulty)
		return
	}

	httputils.WriteText(w, http.StatusOK, network.ResponseLive)
}

func (api NetworkHandlerAPI) StateHandler(w http.ResponseWriter, r *http.Request) {
	httputils.WriteJSON(w, http.StatusOK, resource.NewNodeState(api.consensus.State()))
}

func (api NetworkHandlerAPI) StartHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.StartNode(); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteText(w, http.StatusOK, network.ResponseStarted)
}

func (api NetworkHandlerAPI) StopHandler(w http.ResponseWriter, r *http.Request) {
	api.StopNode()

	httputils.WriteText(w, http.StatusOK, network.ResponseKilled)
}
