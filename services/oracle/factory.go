package oracle

import (
	"context"
	"fmt"

	"voicedesk/config"
)

// New builds the TextOracle selected by ORACLE_PROVIDER.
func New(ctx context.Context) (TextOracle, error) {
	switch config.AppConfig.OracleProvider {
	case "openai", "":
		return NewOpenAIOracle(config.AppConfig.OpenAIAPIKey)
	case "gemini":
		return NewGeminiOracle(ctx, config.AppConfig.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", config.AppConfig.OracleProvider)
	}
}
