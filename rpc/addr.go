package rpc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amonks/taskprompt/internal/config"
	internalstrings "github.com/amonks/taskprompt/internal/strings"
)

// ResolveAddr returns the server address: addr when given (a bare port is
// bound to loopback), else the configured server port.
func ResolveAddr(cfg *config.Config, addr string) (string, error) {
	if !internalstrings.IsBlank(addr) {
		return normalizeAddr(addr)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return cfg.Server.Addr(), nil
}

func normalizeAddr(addr string) (string, error) {
	trimmed := strings.TrimSpace(addr)
	if strings.Contains(trimmed, ":") {
		return trimmed, nil
	}
	port, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid port %q", trimmed)
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("port out of range: %d", port)
	}
	return fmt.Sprintf("127.0.0.1:%d", port), nil
}
