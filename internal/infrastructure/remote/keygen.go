package remote

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

var ErrKeyExists = errors.New("ssh: private key already exists")

// GenerateKeyPair writes an Ed25519 key for the export source to
// privateKeyPath and its authorized_keys line to privateKeyPath + ".pub".
// An existing private key is never overwritten.
func GenerateKeyPair(privateKeyPath, comment string) (string, error) {
	if _, err := os.Stat(privateKeyPath); err == nil {
		return "", fmt.Errorf("%w: %s", ErrKeyExists, privateKeyPath)
	}

	if err := os.MkdirAll(filepath.Dir(privateKeyPath), 0700); err != nil {
		return "", fmt.Errorf("failed to create key directory: %w", err)
	}

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate key pair: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(privKey, comment)
	if err != nil {
		return "", fmt.Errorf("failed to marshal private key: %w", err)
	}
	if err := os.WriteFile(privateKeyPath, pem.EncodeToMemory(block), 0600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}

	sshPubKey, err := ssh.NewPublicKey(pubKey)
	if err != nil {
		return "", fmt.Errorf("failed to create public key: %w", err)
	}
	authorized := ssh.MarshalAuthorizedKey(sshPubKey)
	if comment != "" {
		authorized = append(authorized[:len(authorized)-1], []byte(" "+comment+"\n")...)
	}

	if err := os.WriteFile(privateKeyPath+".pub", authorized, 0644); err != nil {
		return "", fmt.Errorf("failed to write public key: %w", err)
	}

	return string(authorized), nil
}

// GenerateToken returns a URL-safe random token of n bytes of entropy,
// suitable for auth.admin_api_key.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
