package handle

import (
	"encoding/json"
	"net/http"
)

// solveRequest accepts both historical key spellings.
type solveRequest struct {
	ProblemType string `json:"problemType"`
	Domain      string `json:"domain"`
	Expression  string `json:"expression"`
	Question    string `json:"question"`
}

type solveResponse struct {
	ClaudeResult string `json:"claude_result"`
	GPT4Result   string `json:"gpt4_result"`
	ProblemType  string `json:"problem_type"`
	Expression   string `json:"expression"`
}

func (h *Handle) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No JSON data received")
		return
	}

	domain := firstNonEmpty(req.ProblemType, req.Domain)
	question := firstNonEmpty(req.Expression, req.Question)
	h.log.Info("solve request", "domain", domain, "question", question)

	res, err := h.svc.Solve(r.Context(), domain, question)
	if err != nil {
		h.writeSolverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, solveResponse{
		ClaudeResult: res.Claude.Render(),
		GPT4Result:   res.GPT4.Render(),
		ProblemType:  res.Domain,
		Expression:   res.Question,
	})
}
