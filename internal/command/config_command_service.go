package command

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/config"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
)

// ConfigCommandService changes runtime settings.
type ConfigCommandService struct {
	runtime *config.Runtime
}

func NewConfigCommandService(runtime *config.Runtime) *ConfigCommandService {
	return &ConfigCommandService{runtime: runtime}
}

// UpdateConfig points the agent client at a new server and returns the stored URL.
func (s *ConfigCommandService) UpdateConfig(_ context.Context, cmd cqrs.UpdateConfigCommand) (string, error) {
	raw := strings.TrimSpace(cmd.MCPServerURL)
	if raw == "" {
		return "", apperrors.New(apperrors.ErrInvalidRequest, "mcp_server_url required")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperrors.New(apperrors.ErrInvalidRequest, "mcp_server_url must be an http(s) URL")
	}

	s.runtime.SetMCPServerURL(raw)
	current := s.runtime.MCPServerURL()
	log.Printf("MCP server URL updated to %s by %s", current, cmd.UpdatedBy)
	return current, nil
}
