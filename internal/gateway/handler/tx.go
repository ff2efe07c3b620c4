package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"campusvote/internal/gateway"
	"campusvote/internal/gateway/middleware"
)

type txRequest struct {
	Method string   `json:"method"`
	Args   []string `json:"args"`
}

type txResponse struct {
	Result json.RawMessage `json:"result"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, "submit", h.invoker.Submit)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, "evaluate", h.invoker.Evaluate)
}

// relay forwards a named contract invocation. Methods on the protected list
// get the session's student id number prepended to the argument list, so a
// client can never invoke them as someone else.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, kind string, invoke func(context.Context, string, ...string) ([]byte, error)) {
	ctx := r.Context()

	var req txRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	args := req.Args
	if gateway.MethodIsProtected(req.Method) {
		caller := middleware.GetStudentIDNumber(ctx)
		if caller == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		args = append([]string{caller}, args...)
	}

	h.metrics.IncrementInvocation(kind, req.Method)

	ctx, cancel := context.WithTimeout(ctx, invokeTimeout)
	defer cancel()

	payload, err := invoke(ctx, req.Method, args...)
	if err != nil {
		h.metrics.IncrementInvokeFailure(kind, req.Method)
		h.logger.WarnContext(ctx, "invocation rejected",
			"kind", kind,
			"method", req.Method,
			"error", err,
		)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := json.RawMessage(payload)
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, txResponse{Result: result})
}
