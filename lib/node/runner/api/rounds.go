package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/journal"
	"boscoin.io/benor/lib/network/httputils"
	"boscoin.io/benor/lib/node/runner/api/resource"
)

func (api NetworkHandlerAPI) GetRoundsHandler(w http.ResponseWriter, r *http.Request) {
	p, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	option := p.WalkOption()
	if c := p.Cursor(); len(c) > 0 {
		round, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("cursor", c))
			return
		}
		option.From(journal.GetRoundRecordKey(api.id, round))
	}

	records, err := journal.GetRoundRecords(api.storage, api.id, option)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var list []resource.Resource
	for _, rr := range records {
		list = append(list, resource.NewRoundRecord(rr))
	}

	var next string
	if n := len(records); n > 0 && uint64(n) == p.Limit() {
		next = p.NextLink(strconv.FormatUint(records[n-1].Round, 10))
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewResourceList(list, p.SelfLink(), next))
}

func (api NetworkHandlerAPI) GetRoundHandler(w http.ResponseWriter, r *http.Request) {
	s := mux.Vars(r)["round"]
	round, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("round", s))
		return
	}

	rr, err := journal.GetRoundRecord(api.storage, api.id, round)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewRoundRecord(rr))
}
