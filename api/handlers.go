package api

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leadscout/leadscout-backend/models"
	"github.com/leadscout/leadscout-backend/services"
)

var keyIDs = []string{"FIRECRAWL_API_KEY", "GEMINI_API_KEYS", "COMPOSIO_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"}

func maskKey(v string) string {
	// Below 12 characters the head+tail windows overlap and would reveal
	// the whole value.
	if len(v) < 12 {
		return strings.Repeat("•", len(v))
	}
	return v[:6] + "..." + v[len(v)-4:]
}

func getKeys(c *gin.Context) {
	result := gin.H{}
	for _, id := range keyIDs {
		v := os.Getenv(id)
		result[id] = gin.H{
			"connected": v != "",
			"masked":    maskKey(v), // empty string if not set
		}
	}
	c.JSON(http.StatusOK, result)
}

func saveKeys(c *gin.Context) {
	// Accept a flat map of key-id → value for flexibility
	var payload map[string]string
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	// Set in-process immediately so the server can use them right away
	for _, id := range keyIDs {
		if v, ok := payload[id]; ok && v != "" {
			os.Setenv(id, v)
		}
	}

	// Also persist to .env so they survive a server restart
	if err := persistToEnv(payload); err != nil {
		log.Printf("[saveKeys] warning: could not write .env: %v", err)
		// Don't fail the request — in-process env is already updated
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// persistToEnv reads the existing .env, updates matching KEY=VALUE lines, and writes it back.
func persistToEnv(updates map[string]string) error {
	envPath := ".env"
	data, err := os.ReadFile(envPath)
	if err != nil {
		// Create a new .env if it doesn't exist
		data = []byte{}
	}

	lines := strings.Split(string(data), "\n")
	updated := map[string]bool{}

	for i, line := range lines {
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		key := strings.TrimSpace(parts[0])
		if v, ok := updates[key]; ok && v != "" {
			lines[i] = key + "=" + v
			updated[key] = true
		}
	}

	// Append any keys not already in .env
	for k, v := range updates {
		if v != "" && !updated[k] {
			lines = append(lines, k+"="+v)
		}
	}

	return os.WriteFile(envPath, []byte(strings.Join(lines, "\n")), 0600)
}

func getModelHandler(c *gin.Context) {
	provider, model := services.GetLLM()
	c.JSON(http.StatusOK, gin.H{"provider": provider, "model": model})
}

func setModelHandler(c *gin.Context) {
	var body struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
	}
	if err := c.BindJSON(&body); err != nil || body.Provider == "" || body.Model == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider and model are required"})
		return
	}
	services.SetLLM(body.Provider, body.Model)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": body.Provider, "model": body.Model})
}

// resolveKey applies the credential priority: request override > environment.
func resolveKey(override, envName string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	return os.Getenv(envName)
}

// resolveGeminiKeys merges the comma-separated key source with the indexed
// GEMINI_API_KEY_{1..3} environment variables; duplicates collapse in
// rotation order.
func resolveGeminiKeys(override string) []string {
	raw := resolveKey(override, "GEMINI_API_KEYS")
	for i := 1; i <= 3; i++ {
		if v := os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)); v != "" {
			raw += "," + v
		}
	}
	return services.ParseKeys(raw)
}

// generateLeadsHandler runs the full lead pipeline for one request.
// Configuration problems (missing credential, empty query) are rejected here,
// before any network call.
func generateLeadsHandler(c *gin.Context) {
	var req models.GenerateLeadsRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload."})
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Describe what kind of leads you're looking for."})
		return
	}

	firecrawlKey := resolveKey(req.FirecrawlAPIKey, "FIRECRAWL_API_KEY")
	if firecrawlKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Firecrawl API key is required."})
		return
	}
	geminiKeys := resolveGeminiKeys(req.GeminiAPIKeys)
	if len(geminiKeys) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one Gemini API key is required."})
		return
	}
	composioKey := resolveKey(req.ComposioAPIKey, "COMPOSIO_API_KEY")
	if composioKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Composio API key is required."})
		return
	}

	numLinks := req.NumLinks
	if numLinks <= 0 {
		numLinks = 3
	}
	if numLinks > 10 {
		numLinks = 10
	}

	resp, err := services.RunLeadPipeline(services.LeadPipelineInput{
		Query:        req.Query,
		NumLinks:     numLinks,
		SheetTitle:   req.SheetTitle,
		FirecrawlKey: firecrawlKey,
		GeminiKeys:   geminiKeys,
		ComposioKey:  composioKey,
		Debug:        req.Debug,
	})
	if err != nil {
		// The condenser's LLM error is the one upstream failure surfaced verbatim.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// runCSVHandler serves the CSV fallback for a finished run.
func runCSVHandler(c *gin.Context) {
	runID := c.Param("id")
	rows, ok := services.StoredRunRows(runID)
	if !ok || len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No rows held for this run."})
		return
	}

	data, err := services.RowsToCSV(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="leads-%s.csv"`, runID))
	c.Data(http.StatusOK, "text/csv", data)
}

func runsHandler(c *gin.Context) {
	runs, err := services.GetRecentRuns(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}

// resetHandler clears all session state: rotation cursor, extraction cache,
// and stored run rows.
func resetHandler(c *gin.Context) {
	services.ResetSession()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
