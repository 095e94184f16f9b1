package handle

import (
	"encoding/json"
	"net/http"
)

type chatRequest struct {
	Model       string `json:"model"`
	Message     string `json:"message"`
	Context     string `json:"context"`
	ProblemType string `json:"problemType"`
}

type chatResponse struct {
	Result string `json:"result"`
}

func (h *Handle) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No JSON data received")
		return
	}

	h.log.Info("chat request", "model", req.Model, "message", req.Message)

	result, err := h.svc.Chat(r.Context(), req.Model, req.Message, req.Context, req.ProblemType)
	if err != nil {
		h.writeSolverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Result: result})
}
