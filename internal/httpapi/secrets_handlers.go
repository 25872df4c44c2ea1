package httpapi

import (
	"net/http"
	"sync/atomic"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

func (h SecretsHandler) SetHunterKey(w http.ResponseWriter, r *http.Request) {
	var req setHunterKeyReq
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	acct := secrets.HunterKeyringAccount(cfg)
	if err := secrets.SetHunterKey(acct, req.APIKey); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store api key: "+err.Error())
		return
	}
	logging.From(r.Context()).Info("hunter key stored", "account", acct)
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteHunterKey(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.DeleteHunterKey(secrets.HunterKeyringAccount(cfg)); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
