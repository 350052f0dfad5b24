package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pkg/sftp"
	"github.com/reportdash/backend/internal/infrastructure/remote"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// SFTPSource streams the export from a remote host over SFTP.
type SFTPSource struct {
	client *remote.SSHClient
	path   string
	logger *zap.Logger
}

func NewSFTPSource(client *remote.SSHClient, path string, logger *zap.Logger) *SFTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SFTPSource{client: client, path: path, logger: logger}
}

func (s *SFTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	conn, err := s.client.Connect(ctx)
	if err != nil {
		return nil, err
	}

	sftpClient, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}

	remoteFile, err := sftpClient.Open(s.path)
	if err != nil {
		sftpClient.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to open remote export %s: %w", s.path, err)
	}

	if info, err := remoteFile.Stat(); err == nil {
		s.logger.Info("sftp_export_opened",
			zap.String("addr", s.client.Address()),
			zap.String("path", s.path),
			zap.Int64("size_bytes", info.Size()),
		)
	}

	return &sftpReadCloser{file: remoteFile, client: sftpClient, conn: conn}, nil
}

func (s *SFTPSource) Describe() string {
	return "sftp://" + s.client.Address() + s.path
}

type sftpReadCloser struct {
	file   *sftp.File
	client *sftp.Client
	conn   *ssh.Client
}

func (r *sftpReadCloser) Read(p []byte) (int, error) {
	return r.file.Read(p)
}

func (r *sftpReadCloser) Close() error {
	return errors.Join(r.file.Close(), r.client.Close(), r.conn.Close())
}
