package adapthttp

import "net/http"

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	days := intQuery(r, "days", 7)
	writeJSON(w, http.StatusOK, s.analytics.Summarize(days))
}
