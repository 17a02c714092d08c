package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/shieldswap/zkrouter/log"
	"github.com/shieldswap/zkrouter/types"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// urlPoolVersion parses the pool version URL parameter. A missing
// parameter yields version zero, which downstream resolves to the
// configured default.
func urlPoolVersion(r *http.Request) (types.PoolVersion, error) {
	raw := chi.URLParam(r, PoolURLParam)
	if raw == "" {
		return 0, nil
	}
	return types.ParsePoolVersion(raw)
}

// urlHexBytes parses a hex URL parameter ("0x" prefix optional).
func urlHexBytes(r *http.Request, param string) (types.HexBytes, error) {
	var b types.HexBytes
	if err := b.FromString(chi.URLParam(r, param)); err != nil {
		return nil, err
	}
	return b, nil
}

// callerAddress extracts the caller address from the request header. The
// header is optional; absent means the zero address.
func callerAddress(r *http.Request) (common.Address, error) {
	raw := r.Header.Get(CallerHeader)
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("not a hex address: %q", raw)
	}
	return common.HexToAddress(raw), nil
}
