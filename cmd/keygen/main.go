package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/reportdash/backend/internal/infrastructure/remote"
	"github.com/urfave/cli/v3"
)

func main() {
	app := new(cli.Command)

	app.Name = "keygen"
	app.Usage = "generate credentials for the report server"
	app.HideHelpCommand = true

	app.Commands = []*cli.Command{
		{
			Name:  "ssh",
			Usage: "generate an Ed25519 key pair for the SFTP export source",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "private key `path`, the public key is written next to it",
					Value:   defaultKeyPath(),
				},
				&cli.StringFlag{
					Name:  "comment",
					Usage: "key `comment`",
					Value: "reportdash-export",
				},
			},
			Action: func(_ context.Context, c *cli.Command) error {
				path := c.String("out")
				fmt.Printf("Generating Ed25519 SSH key pair...\n")
				fmt.Printf("Private key: %s\n", path)
				fmt.Printf("Public key: %s.pub\n", path)

				authorized, err := remote.GenerateKeyPair(path, c.String("comment"))
				if err != nil {
					return err
				}

				fmt.Printf("Add this line to authorized_keys on the export host:\n%s", authorized)
				fmt.Printf("Then set source.sftp.private_key_path: %s\n", path)
				return nil
			},
		},
		{
			Name:  "token",
			Usage: "generate a random admin API token",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "bytes", Value: 32, Usage: "token entropy in `bytes`"},
			},
			Action: func(_ context.Context, c *cli.Command) error {
				tok, err := remote.GenerateToken(int(c.Int("bytes")))
				if err != nil {
					return err
				}
				fmt.Println(tok)
				return nil
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("keygen: %v", err)
	}
}

func defaultKeyPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "reportdash_ed25519"
	}
	return filepath.Join(homeDir, ".ssh", "reportdash_ed25519")
}
