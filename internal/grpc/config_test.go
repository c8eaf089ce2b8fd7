package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfigValidates(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())
}

func TestServerConfigValidateRejectsEmptyAddress(t *testing.T) {
	cfg := &ServerConfig{MaxRecvMsgSize: 1, MaxSendMsgSize: 1}
	assert.Error(t, cfg.Validate())
}

func TestServerConfigValidateRejectsBadSecureGatewayIP(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.SecureGateway = []string{"not-an-ip"}
	assert.Error(t, cfg.Validate())
}

func TestServerConfigIsSecureGateway(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.SecureGateway = []string{"10.0.0.1"}
	assert.True(t, cfg.IsSecureGateway("10.0.0.1"))
	assert.False(t, cfg.IsSecureGateway("10.0.0.2"))
}
