package api

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/storage"
)

func prepareAPIServer(c *consensus.BenOr) (*httptest.Server, *NetworkHandlerAPI, *storage.LevelDBBackend) {
	st := storage.NewTestStorage()
	apiHandler := NewNetworkHandlerAPI(c.ID(), c, st, "")

	router := mux.NewRouter()
	router.HandleFunc(GetStatusPattern, apiHandler.StatusHandler).Methods("GET")
	router.HandleFunc(GetStatePattern, apiHandler.StateHandler).Methods("GET")
	router.HandleFunc(StartPattern, apiHandler.StartHandler).Methods("GET", "POST")
	router.HandleFunc(StopPattern, apiHandler.StopHandler).Methods("GET", "POST")
	router.HandleFunc(GetEventsPattern, apiHandler.GetEventsHandler).Methods("GET")
	router.HandleFunc(GetRoundsPattern, apiHandler.GetRoundsHandler).Methods("GET")
	router.HandleFunc(GetRoundPattern, apiHandler.GetRoundHandler).Methods("GET")

	return httptest.NewServer(router), apiHandler, st
}

func newTestBenOr(t *testing.T, id, n, f int, faulty bool) *consensus.BenOr {
	policy, err := consensus.NewThresholdPolicy(n, f)
	require.NoError(t, err)

	return consensus.NewBenOr(consensus.Config{
		ID:           id,
		Policy:       policy,
		InitialValue: consensus.One,
		Faulty:       faulty,
		Coin:         consensus.NewLocalCoin(1),
	})
}

func request(t *testing.T, method, url string) (int, string, http.Header) {
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body), resp.Header
}
