package source

import (
	"fmt"

	"github.com/reportdash/backend/internal/config"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/infrastructure/remote"
	"go.uber.org/zap"
)

// New builds the alert source selected by cfg.Type.
func New(cfg config.SourceConfig, logger *zap.Logger) (ports.AlertSource, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileSource(cfg.Path), nil
	case "sftp":
		key, err := remote.LoadPrivateKey(cfg.SFTP.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		client := remote.NewSSHClient(remote.SSHConfig{
			Host:           cfg.SFTP.Host,
			Port:           cfg.SFTP.Port,
			User:           cfg.SFTP.User,
			Password:       cfg.SFTP.Password,
			PrivateKey:     key,
			KnownHostsPath: cfg.SFTP.KnownHostsPath,
			Timeout:        cfg.SFTP.Timeout,
			MaxRetries:     cfg.SFTP.MaxRetries,
		})
		return NewSFTPSource(client, cfg.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}
