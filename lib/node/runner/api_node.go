package runner

import (
	"io/ioutil"
	"net/http"
	"strconv"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/metrics"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/network/httputils"
)

// NetworkHandlerNode receives the messages of the peers.
type NetworkHandlerNode struct {
	id        int
	consensus *consensus.BenOr
	onResult  func(consensus.RoundResult)
	log       logging.Logger
}

func NewNetworkHandlerNode(id int, c *consensus.BenOr, onResult func(consensus.RoundResult)) *NetworkHandlerNode {
	return &NetworkHandlerNode{
		id:        id,
		consensus: c,
		onResult:  onResult,
		log:       log.New(logging.Ctx{"node": id}),
	}
}

// MessageHandler feeds the message to the node. A message which can not be
// decoded is dropped, but the sender still gets success.
func (api NetworkHandlerNode) MessageHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	name := strconv.Itoa(api.id)

	if api.consensus.IsKilled() {
		metrics.Consensus.Rejected.With("node", name).Add(1)
		httputils.WriteJSONError(w, errors.NodeIsKilled)
		return
	}
	if api.consensus.IsFaulty() {
		metrics.Consensus.Rejected.With("node", name).Add(1)
		httputils.WriteJSONError(w, errors.NodeIsFaulty)
		return
	}

	codec, err := network.GetCodec(httputils.ContentType(r))
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	m, err := network.DecodeMessage(codec, body)
	if err != nil {
		metrics.Consensus.Malformed.With("node", name).Add(1)
		api.log.Debug("malformed message dropped", "body", string(body), "error", err)
		httputils.WriteText(w, http.StatusOK, network.ResponseMessageProcessed)
		return
	}

	result, evaluated, err := api.consensus.Intake(m)
	if err != nil {
		metrics.Consensus.Rejected.With("node", name).Add(1)
		httputils.WriteJSONError(w, err)
		return
	}
	metrics.Consensus.Received.With("node", name).Add(1)

	if evaluated {
		api.onResult(result)
	}

	httputils.WriteText(w, http.StatusOK, network.ResponseMessageProcessed)
}
