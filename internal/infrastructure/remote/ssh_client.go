package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var (
	ErrSSHConnection     = errors.New("ssh: connection failed")
	ErrSSHAuthentication = errors.New("ssh: authentication failed")
	ErrSSHHostKey        = errors.New("ssh: host key verification setup failed")
)

type SSHConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKey     string
	KnownHostsPath string
	Timeout        time.Duration
	MaxRetries     int
}

type SSHClient struct {
	config SSHConfig
}

func NewSSHClient(cfg SSHConfig) *SSHClient {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &SSHClient{config: cfg}
}

func (c *SSHClient) Address() string {
	return net.JoinHostPort(c.config.Host, fmt.Sprintf("%d", c.config.Port))
}

func (c *SSHClient) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if c.config.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(c.config.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid private key", ErrSSHAuthentication)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if c.config.Password != "" {
		methods = append(methods, ssh.Password(c.config.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: no credentials provided", ErrSSHAuthentication)
	}

	return methods, nil
}

func (c *SSHClient) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.config.KnownHostsPath == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(c.config.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSSHHostKey, err)
	}
	return cb, nil
}

// Connect dials the server, retrying with exponential backoff. Auth and
// host-key setup errors are not retried.
func (c *SSHClient) Connect(ctx context.Context) (*ssh.Client, error) {
	methods, err := c.authMethods()
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            methods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.config.Timeout,
	}

	addr := c.Address()
	var client *ssh.Client

	backoff := retry.WithMaxRetries(uint64(c.config.MaxRetries), retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		dialer := net.Dialer{
			Timeout:   c.config.Timeout,
			KeepAlive: 60 * time.Second,
		}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return retry.RetryableError(err)
		}

		sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
		if err != nil {
			conn.Close()
			return retry.RetryableError(err)
		}

		client = ssh.NewClient(sshConn, chans, reqs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSSHConnection, addr, err)
	}

	return client, nil
}

// LoadPrivateKey reads a PEM key file for SSHConfig.PrivateKey.
func LoadPrivateKey(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read private key: %w", err)
	}
	return string(data), nil
}
